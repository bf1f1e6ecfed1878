// Package lodestone is the Go client SDK for the Lodestone
// vector-search / knowledge-base service.
//
// A Client talks to the remote API; a Session binds operations to one
// knowledge base (contract) and its embedding model. Ingestion splits
// arbitrarily large inserts into bounded batches with retries and
// partial-failure reporting; search, query, and fetch normalize the
// service's response shapes into one result model.
//
//	client, err := lodestone.New(lodestone.WithAPIKey(key))
//	if err != nil { ... }
//
//	session, err := client.Select(ctx, contractID)
//	if err != nil { ... }
//
//	report, err := session.Insert(ctx, records)
//	results, err := session.Search(ctx, "capital of France", 10)
package lodestone
