package domain

// Remote payload shapes. The provider's wire format is its own business; these
// structs carry only the fields the core depends on, with optionality made
// explicit instead of duck-typed maps.

// RemoteThread is a provider-side conversation as returned by a thread fetch.
type RemoteThread struct {
	ID       string
	Messages []RemoteMessage
}

// RemoteMessage is a single provider message with its decoded-enough payload.
type RemoteMessage struct {
	ID string
	// ThreadID is the conversation the message belongs to.
	ThreadID string
	// InternalDate is the provider-assigned timestamp in epoch milliseconds,
	// zero when unknown.
	InternalDate int64
	Labels       []string
	Payload      *RemotePart
}

// RemotePart is one node of the MIME tree: the top-level payload or any
// nested part.
type RemotePart struct {
	PartID   string
	MIMEType string
	// Filename is non-empty only for attachment parts.
	Filename string
	Headers  []RemoteHeader
	Body     RemoteBody
	Parts    []RemotePart
}

// RemoteHeader is a single name/value header pair.
type RemoteHeader struct {
	Name  string
	Value string
}

// RemoteBody carries the part content reference: inline base64url data,
// or an attachment id to fetch lazily.
type RemoteBody struct {
	// AttachmentID is set when the body bytes live behind the attachment
	// download endpoint.
	AttachmentID string
	// Data is base64url-encoded content; empty means no inline data.
	Data string
	// Size is the decoded size in bytes as reported by the provider.
	Size int64
}

// ThreadRef identifies a remote thread in a listing response.
type ThreadRef struct {
	ID string
}

// ThreadList is one page of a remote thread listing.
type ThreadList struct {
	Threads       []ThreadRef
	NextPageToken string
}
