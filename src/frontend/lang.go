package frontend

type reservedItem struct {
	val string
	typ itemType
}

// rw contains the set of all reserved paw keywords. The first dimension
// is the length of the word minus one; the second dimension is the slice of all
// words of that length. Indexing by length and scanning a short slice beats
// a map for a keyword set this size.
var rw = [...][]reservedItem{
	// One-grams.
	{},
	// Two-grams.
	{
		{val: "fn", typ: FN},
		{val: "if", typ: IF},
		{val: "in", typ: IN},
		{val: "is", typ: IS},
		{val: "as", typ: AS},
		{val: "ok", typ: OK},
	},
	// Three-grams.
	{
		{val: "let", typ: LET},
		{val: "mut", typ: MUT},
		{val: "pub", typ: PUB},
		{val: "err", typ: ERR},
	},
	// Four-grams.
	{
		{val: "type", typ: TYPE},
		{val: "enum", typ: ENUM},
		{val: "else", typ: ELSE},
		{val: "loop", typ: LOOP},
		{val: "self", typ: SELF},
		{val: "Self", typ: SELFTYPE},
		{val: "true", typ: TRUE},
	},
	// Five-grams.
	{
		{val: "break", typ: BREAK},
		{val: "match", typ: MATCH},
		{val: "false", typ: FALSE},
	},
	// Six-grams.
	{
		{val: "struct", typ: STRUCT},
		{val: "return", typ: RETURN},
		{val: "import", typ: IMPORT},
		{val: "extern", typ: EXTERN},
	},
	// Seven-grams.
	{},
	// Eight-grams.
	{
		{val: "continue", typ: CONTINUE},
	},
}

// isKeyword returns true if s is a reserved paw keyword, along with its
// itemType. If s is not a keyword the returned type is IDENTIFIER.
func isKeyword(s string) (bool, itemType) {
	if len(s) == 0 || len(s) > len(rw) {
		return false, IDENTIFIER
	}
	for _, e := range rw[len(s)-1] {
		if e.val == s {
			return true, e.typ
		}
	}
	return false, IDENTIFIER
}
