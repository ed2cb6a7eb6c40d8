// Package core provides the business logic for sweeping uploaded tables.
//
// This package sits between the conversion pipeline in package table and
// the transports (web handlers, CLI). It holds no UI code and can be used by
// tests without a server.
//
// # Upload Sessions
//
// [Service.Upload] parses each file of a batch independently. A file with an
// unsupported extension or a parse error yields a [FileSummary] with the
// error set, and the batch continues. Parsed tables are kept under a random
// id until the session TTL passes or [Service.Discard] is called:
//
//	svc := core.NewService(core.DefaultConfig())
//	summaries := svc.Upload(ctx, []core.UploadFile{{Name: "data.csv", Data: b}})
//	res, err := svc.Convert(ctx, summaries[0].ID, core.Options{Target: table.Excel})
//
// Every preview and conversion works on a copy of the stored table, so the
// user can change options and re-run without re-uploading.
//
// # Concurrency
//
// A [ConversionLimiter] bounds parallel parse and convert work. Callers wait
// up to the configured time for a slot and then fail with
// [ErrTooManyConversions].
//
// # History
//
// Finished conversions are recorded in a [HistoryStore]: file names,
// formats, row counts and kept columns. Cell data is never stored.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - FILE001-FILE007: file errors (size, format, parse, encoding)
//   - VAL007-VAL009: option errors (unknown column, empty numeric column)
//   - UPL002-UPL006: session and capacity errors
//   - RATE001: rate limiting
package core
