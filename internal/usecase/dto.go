package usecase

// DownloadRequest is the body of POST /api/download-drive-file
type DownloadRequest struct {
	URL string `json:"url"`
}

// BatchRequest is the body of POST /api/download-multiple. Text is split
// into links when URLs is empty.
type BatchRequest struct {
	URLs []string `json:"urls"`
	Text string   `json:"text,omitempty"`
}

// BatchItem is the outcome for one link of a batch. Size is set on every
// success, including empty files, and absent on failures.
type BatchItem struct {
	URL      string `json:"url"`
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	FileID   string `json:"file_id,omitempty"`
	Size     *int64 `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BatchResponse lists batch outcomes in input order
type BatchResponse struct {
	Results []BatchItem `json:"results"`
}

// StatusResponse is the body of the status routes
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
