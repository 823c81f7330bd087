// Package recfeed embeds the recfeed recommendation engine in a Go program.
//
// The client talks to Redis 8+ directly and runs the same refresh, retrieval
// and cleanup pipeline as the HTTP service.
//
//	client, _ := recfeed.New(ctx, recfeed.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	_ = client.IngestItems(ctx, []recfeed.Item{{ID: "a", Title: "Go 1.25", PublishedAt: time.Now()}})
//	_ = client.SetInterests(ctx, "u1", map[string]int{"golang": 5})
//
//	feed, _ := client.Feed(ctx, "u1", 20)
//	for _, rec := range feed.Items {
//	    fmt.Println(rec.ItemID, rec.Score, rec.Source)
//	}
//	_ = client.MarkRead(ctx, "u1", feed.Items[0].ID)
package recfeed
