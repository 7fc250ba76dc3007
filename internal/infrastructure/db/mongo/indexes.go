package mongo

import "go.mongodb.org/mongo-driver/mongo/options"

func indexUnique() *options.IndexOptions {
	return options.Index().SetUnique(true)
}

// indexUniqueSparse enforces uniqueness only on documents that carry the
// field, which is what optional email and reset_token need.
func indexUniqueSparse() *options.IndexOptions {
	return options.Index().SetUnique(true).SetSparse(true)
}
