// Package mongorepos implements the repositories on top of MongoDB.
package mongorepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections
const (
	studentsCollection = "students"
	coursesCollection  = "courses"
)

// Unique index names, used to tell which field a duplicate key error is about.
const (
	usernameIndex   = "students_username_unique"
	emailIndex      = "students_email_unique"
	courseNameIndex = "courses_name_unique"
)

// EnsureIndexes creates the indexes backing the uniqueness invariants.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(studentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(usernameIndex).SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(emailIndex).SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("students_created_at")},
	})
	if err != nil {
		return errors.Wrap(err, "creating students indexes")
	}
	_, err = db.Collection(coursesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName(courseNameIndex).SetUnique(true),
	})
	return errors.Wrap(err, "creating courses indexes")
}

// duplicateIndex returns the name of the unique index violated by err, if any.
func duplicateIndex(err error, indexes ...string) (string, bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return "", false
	}
	msg := err.Error()
	for _, idx := range indexes {
		if strings.Contains(msg, idx) {
			return idx, true
		}
	}
	return "", true
}

type base struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// withTimeout bounds a single store call.
func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}
