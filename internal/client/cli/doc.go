// Package cli provides the interactive admin console of the school CMS.
//
// The console signs in against the REST backend, keeps the session in a
// local SQLite file and exposes the table and media operations of the
// data-access client as one-line commands:
//
//	select news is_published=true order=created_at:desc limit=5
//	get news 0b6f3c1e-5a2d-4c8e-9f1a-7d2e4b6a8c10
//	insert gallery '{"title":"Sports day"}'
//	upload gallery/2024/a.jpg ./a.jpg
//
// Results are printed as indented JSON. The REPL is started via App.Run,
// which blocks until the user exits.
package cli
