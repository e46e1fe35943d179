package api

import (
	"time"

	"dubber/internal/jobs"
	"dubber/internal/match"
	"dubber/internal/merge"
	"dubber/internal/prefs"
)

// Apply layers the request's explicit fields over base, leaving every
// unsent field untouched.
func (o MergeOptions) Apply(base merge.Config) merge.Config {
	out := base
	if o.ReplaceAudio != nil {
		out.ReplaceAudio = *o.ReplaceAudio
	}
	if o.KeepOriginal != nil {
		out.KeepOriginal = *o.KeepOriginal
	}
	if o.NormalizeAudio != nil {
		out.NormalizeAudio = *o.NormalizeAudio
	}
	if o.AudioCodec != "" {
		out.AudioCodec = o.AudioCodec
	}
	if o.VideoCodec != "" {
		out.VideoCodec = o.VideoCodec
	}
	if o.OutputFormat != "" {
		out.OutputFormat = o.OutputFormat
	}
	if o.SocialMedia != nil {
		out.SocialMedia = *o.SocialMedia
	}
	if o.SocialWidth > 0 {
		out.SocialWidth = o.SocialWidth
	}
	if o.SocialHeight > 0 {
		out.SocialHeight = o.SocialHeight
	}
	if o.SocialFormat != "" {
		out.SocialFormat = o.SocialFormat
	}
	return out.Normalized()
}

// OptionsFromConfig expresses a full merge config as explicit options,
// used when rendering saved preferences back to the caller.
func OptionsFromConfig(cfg merge.Config) MergeOptions {
	cfg = cfg.Normalized()
	return MergeOptions{
		ReplaceAudio:   boolPtr(cfg.ReplaceAudio),
		KeepOriginal:   boolPtr(cfg.KeepOriginal),
		NormalizeAudio: boolPtr(cfg.NormalizeAudio),
		AudioCodec:     cfg.AudioCodec,
		VideoCodec:     cfg.VideoCodec,
		OutputFormat:   cfg.OutputFormat,
		SocialMedia:    boolPtr(cfg.SocialMedia),
		SocialWidth:    cfg.SocialWidth,
		SocialHeight:   cfg.SocialHeight,
		SocialFormat:   cfg.SocialFormat,
	}
}

// StatusFromJob renders the polling payload for one job.
func StatusFromJob(job *jobs.Job) StatusResponse {
	return StatusResponse{
		JobID:   job.ID,
		Running: job.Status == jobs.StatusRunning || job.Status == jobs.StatusPending,
		Status:  string(job.Status),
		Message: job.ProgressMessage,
		Percent: job.ProgressPercent,
	}
}

// SummaryFromJob renders one listing row.
func SummaryFromJob(job *jobs.Job) JobSummary {
	summary := JobSummary{
		JobID:     job.ID,
		OwnerID:   job.OwnerID,
		Status:    string(job.Status),
		Percent:   job.ProgressPercent,
		Message:   job.ProgressMessage,
		MP3Dir:    job.AudioDir,
		MKVDir:    job.VideoDir,
		OutDir:    job.OutputDir,
		CreatedAt: job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		summary.CompletedAt = job.CompletedAt.UTC().Format(time.RFC3339)
	}
	return summary
}

// MatchesFromPairs renders a pairing preview.
func MatchesFromPairs(pairs []match.Pair) FindMatchesResponse {
	entries := make([]MatchEntry, 0, len(pairs))
	for _, pair := range pairs {
		entries = append(entries, MatchEntry{
			MP3:    pair.AudioPath,
			MKV:    pair.VideoPath,
			Output: pair.OutputPath,
		})
	}
	return FindMatchesResponse{Success: true, Matches: entries, Total: len(entries)}
}

// PreferencesFromStore renders saved preferences.
func PreferencesFromStore(p prefs.Preferences) PreferencesPayload {
	return PreferencesPayload{
		OwnerID:           p.OwnerID,
		MP3Dir:            p.AudioDir,
		MKVDir:            p.VideoDir,
		OutDir:            p.OutputDir,
		MaxConcurrentJobs: p.MaxConcurrentJobs,
		MergeOptions:      OptionsFromConfig(p.Merge),
	}
}

// ApplyToPreferences layers the payload's explicit fields over base.
func (p PreferencesPayload) ApplyToPreferences(base prefs.Preferences) prefs.Preferences {
	out := base
	if p.MP3Dir != "" {
		out.AudioDir = p.MP3Dir
	}
	if p.MKVDir != "" {
		out.VideoDir = p.MKVDir
	}
	if p.OutDir != "" {
		out.OutputDir = p.OutDir
	}
	if p.MaxConcurrentJobs > 0 {
		out.MaxConcurrentJobs = p.MaxConcurrentJobs
	}
	out.Merge = p.MergeOptions.Apply(base.Merge)
	return out
}

func boolPtr(v bool) *bool {
	return &v
}
