package testutil

import (
	"encoding/json"
	"time"

	"github.com/zunou-lab/chatsync/internal/entity"
)

func Message(id, content string) entity.Message {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return entity.Message{
		ID:        id,
		Content:   content,
		Sender:    SampleUser(),
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// PageOf builds a server page in newest-first order.
func PageOf(current, last int, hasMore bool, messages ...entity.Message) entity.Page {
	return entity.Page{
		Data: messages,
		PaginatorInfo: entity.PaginatorInfo{
			CurrentPage:  current,
			LastPage:     last,
			HasMorePages: hasMore,
			Total:        len(messages),
		},
	}
}

// DecodeInto fills a GraphQL output struct the way the real caller would,
// through the json tags of the target.
func DecodeInto(out any, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, out)
}
