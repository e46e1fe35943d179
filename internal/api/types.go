// Package api defines the JSON payloads shared by the daemon's HTTP
// surface and its callers, plus conversions from the domain types.
package api

// MergeOptions carries the per-request merge overrides. Pointer fields
// distinguish "not sent" from an explicit false so saved preferences and
// configuration defaults can fill the gaps.
type MergeOptions struct {
	ReplaceAudio   *bool  `json:"replaceAudio,omitempty"`
	KeepOriginal   *bool  `json:"keepOriginal,omitempty"`
	NormalizeAudio *bool  `json:"normalizeAudio,omitempty"`
	AudioCodec     string `json:"audioCodec,omitempty"`
	VideoCodec     string `json:"videoCodec,omitempty"`
	OutputFormat   string `json:"outputFormat,omitempty"`
	SocialMedia    *bool  `json:"socialMedia,omitempty"`
	SocialWidth    int    `json:"socialWidth,omitempty"`
	SocialHeight   int    `json:"socialHeight,omitempty"`
	SocialFormat   string `json:"socialFormat,omitempty"`
}

// StartRequest submits a merge job over a directory pair.
type StartRequest struct {
	MP3Dir  string `json:"mp3Dir"`
	MKVDir  string `json:"mkvDir"`
	OutDir  string `json:"outDir"`
	OwnerID string `json:"ownerId,omitempty"`
	MergeOptions
}

// StartResponse reports the submission outcome.
type StartResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusResponse is the polling payload for one job.
type StatusResponse struct {
	JobID   string `json:"jobId"`
	Running bool   `json:"running"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Percent int    `json:"percent"`
}

// StopRequest cancels a job on behalf of its owner.
type StopRequest struct {
	JobID   string `json:"jobId"`
	OwnerID string `json:"ownerId,omitempty"`
}

// StopResponse reports whether a cancellation was signalled.
type StopResponse struct {
	Success bool `json:"success"`
}

// FindMatchesRequest previews pairing without creating a job.
type FindMatchesRequest struct {
	MP3Dir string `json:"mp3Dir"`
	MKVDir string `json:"mkvDir"`
	OutDir string `json:"outDir,omitempty"`
	MergeOptions
}

// MatchEntry is one previewed pairing.
type MatchEntry struct {
	MP3    string `json:"mp3"`
	MKV    string `json:"mkv"`
	Output string `json:"output"`
}

// FindMatchesResponse lists previewed pairings.
type FindMatchesResponse struct {
	Success bool         `json:"success"`
	Matches []MatchEntry `json:"matches"`
	Total   int          `json:"total"`
}

// JobSummary is one row in a job listing.
type JobSummary struct {
	JobID       string `json:"jobId"`
	OwnerID     string `json:"ownerId"`
	Status      string `json:"status"`
	Percent     int    `json:"percent"`
	Message     string `json:"message"`
	MP3Dir      string `json:"mp3Dir"`
	MKVDir      string `json:"mkvDir"`
	OutDir      string `json:"outDir"`
	CreatedAt   string `json:"createdAt"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// JobListResponse carries an owner's jobs, most recent first.
type JobListResponse struct {
	Jobs []JobSummary `json:"jobs"`
}

// PreferencesPayload is the saved per-owner defaults, both as returned
// by GET and as accepted by POST.
type PreferencesPayload struct {
	OwnerID           string `json:"ownerId,omitempty"`
	MP3Dir            string `json:"mp3Dir,omitempty"`
	MKVDir            string `json:"mkvDir,omitempty"`
	OutDir            string `json:"outDir,omitempty"`
	MaxConcurrentJobs int    `json:"maxConcurrentJobs,omitempty"`
	MergeOptions
}

// HealthResponse answers liveness probes.
type HealthResponse struct {
	Status          string `json:"status"`
	Running         bool   `json:"running"`
	DBPath          string `json:"dbPath"`
	FFmpegAvailable bool   `json:"ffmpegAvailable"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
