package identity

import "errors"

var (
	// ErrUnexpectedStatus indicates the metadata endpoint returned a non-2xx status.
	ErrUnexpectedStatus = errors.New("identity: unexpected metadata status")

	// ErrMalformedMetadata indicates the metadata body could not be decoded.
	ErrMalformedMetadata = errors.New("identity: malformed metadata")

	// ErrUnknownSource indicates an unrecognized identity source name.
	ErrUnknownSource = errors.New("identity: unknown source")

	// ErrMissingMetadataURI indicates the ecs source was selected without a base URL.
	ErrMissingMetadataURI = errors.New("identity: metadata uri is required")
)
