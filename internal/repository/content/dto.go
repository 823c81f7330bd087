package content

import (
	"time"

	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
)

// itemDoc is the JSON document stored at recfeed:content:{id}.
type itemDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Keywords    []string `json:"keywords"`
	PublishedAt int64    `json:"published_at"` // unix millis, indexed SORTABLE
}

func toDoc(it *domcontent.Item) itemDoc {
	return itemDoc{
		ID:          it.ID(),
		Title:       it.Title(),
		Body:        it.Body(),
		Keywords:    it.Keywords(),
		PublishedAt: it.PublishedAt().UnixMilli(),
	}
}

func (d *itemDoc) toDomain() domcontent.Item {
	return domcontent.Reconstruct(d.ID, d.Title, d.Body, d.Keywords, time.UnixMilli(d.PublishedAt).UTC())
}
