// Package umzug provides a client for the Umzug moving-inventory API.
//
// The API organizes items into boxes through packings. This package builds
// authenticated requests, classifies transport failures and decodes typed
// results.
//
// # Architecture
//
//   - Client: performs HTTP round trips with Basic authentication
//   - Request: immutable request descriptors built by factory functions
//   - Result: the decoded success payload or a per-endpoint domain failure
//   - APIError: transport and protocol failures that abort a request
//   - Reporter: session-wide, first-wins slot for session-invalidating errors
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client := umzug.NewClient(
//		umzug.Server{Scheme: umzug.SchemeHTTPS, Host: "umzug.example.com", Port: 443},
//		umzug.Authentication{Username: "jakob", Password: "secret"},
//		logger,
//		umzug.WithTimeout(10*time.Second),
//	)
//
//	result, err := client.CreateBox(ctx, "Kitchen")
//	if err != nil {
//		// *umzug.APIError, no result
//	}
//	box, err := result.Get()
//	if err != nil {
//		// domain failure, e.g. "A box with this title already exists."
//	}
//
// # Error Handling
//
// Two tiers of failures exist. Transport failures (bad URL, unusable
// credentials, closed client, non-200 status, anything else) are returned as
// *APIError. Domain failures are decoded from a {"error": ...} envelope in a
// 200 response and returned inside the Result:
//
//	if apiErr, ok := umzug.AsAPIError(err); ok && apiErr.ShouldReport() {
//		// force re-authentication
//	}
package umzug
