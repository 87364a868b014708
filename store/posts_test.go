package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestListFilterQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bson.M{}, ListFilter{}.Query())

	assert.Equal(t,
		bson.M{"user.username": "velopert"},
		ListFilter{Username: "velopert"}.Query())

	assert.Equal(t,
		bson.M{"tags": "go"},
		ListFilter{Tag: "go"}.Query())

	assert.Equal(t,
		bson.M{"user.username": "velopert", "tags": "go"},
		ListFilter{Username: "velopert", Tag: "go"}.Query())
}
