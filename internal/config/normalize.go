package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	for i := range c.Watch.Dirs {
		if c.Watch.Dirs[i], err = expandPath(c.Watch.Dirs[i]); err != nil {
			return err
		}
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	c.Merge.AudioCodec = strings.ToLower(strings.TrimSpace(c.Merge.AudioCodec))
	c.Merge.VideoCodec = strings.ToLower(strings.TrimSpace(c.Merge.VideoCodec))
	c.Merge.OutputFormat = strings.ToLower(strings.TrimSpace(c.Merge.OutputFormat))
	c.Merge.SocialFormat = strings.ToLower(strings.TrimSpace(c.Merge.SocialFormat))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if c.Jobs.MaxConcurrentPerOwner <= 0 {
		c.Jobs.MaxConcurrentPerOwner = defaultMaxConcurrent
	}
	if c.Watch.PollInterval <= 0 {
		c.Watch.PollInterval = defaultWatchPollInterval
	}
	return nil
}
