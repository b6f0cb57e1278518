package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/schema"
)

func TestWaitingEntryUniqueIndexSpansOnlyLiveEntries(t *testing.T) {
	s, err := schema.Parse(&WaitingEntry{}, &sync.Map{}, schema.NamingStrategy{})
	assert.NoError(t, err)

	var idx *schema.Index
	for _, candidate := range s.ParseIndexes() {
		if candidate.Name == "event_email" {
			idx = candidate
		}
	}
	if assert.NotNil(t, idx, "event_email index missing") {
		assert.Equal(t, "UNIQUE", idx.Class)
		assert.Len(t, idx.Fields, 2)
		// An expired entry must not block the same address from joining
		// the queue again.
		assert.Equal(t, "status <> 'expired'", idx.Where)
	}
}
