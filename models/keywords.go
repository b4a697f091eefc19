package models

// KeywordRule is one entry of an ordered keyword table: the label is returned
// when any of its keywords occurs in the input.
type KeywordRule struct {
	Label    string
	Keywords []string
}
