package api

// PasteRequest carries raw clipboard text for the paste channel.
type PasteRequest struct {
	Text string `json:"text"`
}

// URLRequest carries a user-entered URL for the remote-URL channel.
type URLRequest struct {
	URL string `json:"url"`
}

// ShareResponse is returned after a local report was persisted remotely.
type ShareResponse struct {
	ID       string `json:"id"`
	Location string `json:"location"`
}

// ViewerState describes the intake machine for the UI layer.
type ViewerState struct {
	State     string `json:"state"`
	Origin    string `json:"origin,omitempty"`
	Location  string `json:"location"`
	Shareable bool   `json:"shareable"`
	Warning   string `json:"warning,omitempty"`
}

// Error is the uniform error body for the viewer API.
type Error struct {
	Error string `json:"error"`
}
