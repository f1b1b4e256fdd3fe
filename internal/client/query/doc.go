// Package query implements the fluent table query builder of the CMS
// data-access client.
//
// # Overview
//
// A Builder is obtained from Client.From(table), refined with chained calls
// and run with Execute. Each Execute performs exactly one HTTP request:
//
//	res := c.From("news").
//		Select("*").
//		Eq("is_published", true).
//		Order("created_at", query.OrderOptions{Ascending: false}).
//		Limit(5).
//		Execute(ctx)
//	// GET {base}/news?is_published=true&sort=created_at&order=desc&limit=5
//
// # Query string conventions
//
// Filters are sent as query parameters in the order they were added:
// Eq as "field", Neq/Gte/Lte as "field_neq", "field_gte", "field_lte",
// In as "field_in" holding a JSON array. The keys select, count, sort,
// order, limit and head are reserved for modifiers.
//
// # Verbs
//
//	GET     {base}/{table}?{params}
//	POST    {base}/{table}?{params}   body: value, or its first element
//	PATCH   {base}/{table}/{id}       body: value without id and _id
//	DELETE  {base}/{table}/{id}       or {base}/{table}?{params} with an _in filter
//	UPSERT  POST {base}/{table}/upsert  body: {"data": value}
//
// The {id} of PATCH and DELETE comes from the first Eq filter.
//
// # Results
//
// Execution never panics and never returns a Go error. Every failure
// (transport, non-2xx status, malformed JSON, missing precondition) is
// reported in Result.Error with Data set to nil. Objects carrying "_id" but
// no "id" get an "id" copy of it, element-wise through arrays.
//
// A Builder is not safe for concurrent use. Executing it twice sends the
// same request twice.
package query
