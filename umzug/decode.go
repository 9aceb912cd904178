package umzug

import (
	"bytes"
	"encoding/json"
)

// FailureType is implemented by every per-endpoint failure. The zero value
// must be usable as a receiver for InvalidContent and NoContent.
type FailureType[F any] interface {
	error
	InvalidContent() F
	NoContent() F
}

// OptionalFailureType is implemented by failures of endpoints that may answer
// with an empty body on success
type OptionalFailureType[F any] interface {
	error
	InvalidContent() F
}

var jsonNull = []byte("null")

type envelope[F any] struct {
	Error *F `json:"error"`
}

// decodeEnvelope tries to read body as {"error": F}
func decodeEnvelope[F any](body []byte) (F, bool) {
	var env envelope[F]
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		var zero F
		return zero, false
	}
	return *env.Error, true
}

// Decode turns a 200 response body into a Result. The failure envelope wins
// over the success payload; an empty body is noContent and anything else
// that does not decode is invalidContent.
func Decode[S any, F FailureType[F]](body []byte) Result[S, F] {
	var zero F
	if len(bytes.TrimSpace(body)) == 0 {
		return Failed[S](zero.NoContent())
	}

	if failure, ok := decodeEnvelope[F](body); ok {
		return Failed[S](failure)
	}

	// json.Unmarshal accepts null for slices, maps and pointers
	var content S
	if bytes.Equal(bytes.TrimSpace(body), jsonNull) {
		return Failed[S](zero.InvalidContent())
	}
	if err := json.Unmarshal(body, &content); err != nil {
		return Failed[S](zero.InvalidContent())
	}
	return Success[S, F](content)
}

// DecodeOptional behaves like Decode, except that an empty body is a
// successful nil payload
func DecodeOptional[S any, F OptionalFailureType[F]](body []byte) Result[*S, F] {
	if len(bytes.TrimSpace(body)) == 0 {
		return Success[*S, F](nil)
	}

	if failure, ok := decodeEnvelope[F](body); ok {
		return Failed[*S](failure)
	}

	var zero F
	if bytes.Equal(bytes.TrimSpace(body), jsonNull) {
		return Failed[*S](zero.InvalidContent())
	}
	content := new(S)
	if err := json.Unmarshal(body, content); err != nil {
		return Failed[*S](zero.InvalidContent())
	}
	return Success[*S, F](content)
}
