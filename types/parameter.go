// parameter.go defines the custom decoder parameters passed at session creation.

package types

import (
	"fmt"
	"strconv"
	"time"
)

type Parameter struct {
	Key   string `mapstructure:"key" json:"key"`
	Value string `mapstructure:"value" json:"value"`
}

func (p Parameter) String() string {
	return p.Key + "=" + p.Value
}

// Parameters is an ordered list of kernel-specific initialization parameters.
type Parameters []Parameter

// Validate checks that every key is non-empty and appears only once.
func (s Parameters) Validate() error {
	seen := make(map[string]int, len(s))
	for idx, p := range s {
		if p.Key == "" {
			return fmt.Errorf("parameter #%d has an empty key", idx)
		}
		if prevIdx, ok := seen[p.Key]; ok {
			return fmt.Errorf("parameter '%s' is set twice (#%d and #%d)", p.Key, prevIdx, idx)
		}
		seen[p.Key] = idx
	}
	return nil
}

// Deduplicate keeps only the last value of each key, ordered by the
// position of the kept values.
func (s Parameters) Deduplicate() Parameters {
	lastIdx := make(map[string]int, len(s))
	for idx, p := range s {
		lastIdx[p.Key] = idx
	}
	result := make(Parameters, 0, len(lastIdx))
	for idx, p := range s {
		if lastIdx[p.Key] != idx {
			continue
		}
		result = append(result, p)
	}
	return result
}

func (s Parameters) Clone() Parameters {
	if s == nil {
		return nil
	}
	result := make(Parameters, len(s))
	copy(result, s)
	return result
}

func (s Parameters) Get(key string) (string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Key == key {
			return s[i].Value, true
		}
	}
	return "", false
}

func (s Parameters) GetInt(key string) (int, bool, error) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, fmt.Errorf("unable to parse parameter '%s' value '%s' as an integer: %w", key, v, err)
	}
	return i, true, nil
}

func (s Parameters) GetDuration(key string) (time.Duration, bool, error) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, true, fmt.Errorf("unable to parse parameter '%s' value '%s' as a duration: %w", key, v, err)
	}
	return d, true, nil
}
