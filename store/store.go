package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ContextTimeout = time.Duration(20) * time.Second
)

type Sort struct {
	Attribute string
	Ascending bool
}

func (s *Sort) Order() int {
	if s.Ascending {
		return 1
	}
	return -1
}

// SortDocument returns the mongo sort document of the attributes in order of precedence
func SortDocument(sorts ...*Sort) bson.D {
	doc := make(bson.D, 0, len(sorts))
	for _, s := range sorts {
		doc = append(doc, bson.E{Key: s.Attribute, Value: s.Order()})
	}
	return doc
}

func NewDbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ContextTimeout)
}
