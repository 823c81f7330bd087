package recommendation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
)

// Hash field names of recfeed:rec:{id}.
const (
	fieldUserID    = "user_id"
	fieldItemID    = "item_id"
	fieldScore     = "score"
	fieldStatus    = "status"
	fieldSource    = "source"
	fieldCategory  = "category"
	fieldMatched   = "matched_interests"
	fieldQuality   = "quality"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// mutableFields are overwritten by every upsert.
func mutableFields(r *domrec.Record) (map[string]string, error) {
	matched, err := json.Marshal(nonNil(r.MatchedInterests()))
	if err != nil {
		return nil, fmt.Errorf("marshal matched interests: %w", err)
	}
	return map[string]string{
		fieldUserID:    r.UserID(),
		fieldItemID:    r.ItemID(),
		fieldScore:     strconv.FormatFloat(r.Score(), 'f', -1, 64),
		fieldSource:    string(r.Source()),
		fieldCategory:  r.Category(),
		fieldMatched:   string(matched),
		fieldQuality:   string(r.Quality()),
		fieldUpdatedAt: formatMillis(r.UpdatedAt()),
	}, nil
}

// insertOnlyFields are written only when the record is first created,
// so a re-score never resets status or the original creation time.
func insertOnlyFields(r *domrec.Record) map[string]string {
	return map[string]string{
		fieldStatus:    string(domrec.StatusNew),
		fieldCreatedAt: formatMillis(r.CreatedAt()),
	}
}

func recordFromHash(key string, m map[string]string) (domrec.Record, error) {
	id := strings.TrimPrefix(key, keyPrefix)
	if m[fieldUserID] == "" || m[fieldItemID] == "" {
		return domrec.Record{}, fmt.Errorf("record %s: missing user or item", id)
	}

	score, err := strconv.ParseFloat(m[fieldScore], 64)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("record %s: parse score: %w", id, err)
	}

	var matched []string
	if raw := m[fieldMatched]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &matched); err != nil {
			return domrec.Record{}, fmt.Errorf("record %s: parse matched interests: %w", id, err)
		}
	}

	status := domrec.Status(m[fieldStatus])
	if status == "" {
		status = domrec.StatusNew
	}

	return domrec.Reconstruct(
		id,
		m[fieldUserID],
		m[fieldItemID],
		score,
		status,
		domrec.Source(m[fieldSource]),
		m[fieldCategory],
		matched,
		domrec.Quality(m[fieldQuality]),
		parseMillis(m[fieldCreatedAt]),
		parseMillis(m[fieldUpdatedAt]),
	), nil
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
