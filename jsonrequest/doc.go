// Package jsonrequest performs HTTP requests and returns the response body
// decoded as JSON, turning every failure into one of a small set of errors.
//
// A call either returns the parsed body or fails with:
//   - the transport's own error, unwrapped (connection refused, too many
//     redirects, ...)
//   - an *Error of KindHTTPStatus for status codes of 400 and above, with the
//     raw body attached
//   - an *Error of KindReadTimeout when Options.ReadTimeout elapses first
//   - an *Error of KindJSONParse when the parser rejects the body, with the
//     raw body attached
//
// Basic Usage:
//
//	data, err := jsonrequest.Get(ctx, jsonrequest.URL("https://api.example.com/users"))
//	if err != nil {
//	    switch jsonrequest.CodeOf(err) {
//	    case jsonrequest.CodeReadTimeout:
//	        // retry later
//	    case "NOT_FOUND":
//	        // ...
//	    }
//	}
//
// Custom Parser Example:
//
//	type User struct {
//	    Name string `json:"name"`
//	}
//
//	v, err := client.Get(ctx, jsonrequest.Options{
//	    URL:         "https://api.example.com/users/1",
//	    ReadTimeout: 2 * time.Second,
//	    Parser:      jsonrequest.ParseInto[User](),
//	})
//	user := v.(User)
//
// Every request sends "Accept: application/json", replacing any accept header
// the caller set. HEAD requests never parse the body and succeed with nil.
//
// Thread Safety:
//
// Client is safe for concurrent use. Each call keeps its own state, and the
// Options passed in are copied rather than modified.
package jsonrequest
