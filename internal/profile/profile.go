// Package profile holds the aggregate record built during one collection run.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Identity, classification and run metadata keys. They use the names the
// analytics backend expects on the wire.
const (
	KeyVisitorID       = "visitor_id"
	KeyVisitCount      = "visit_count"
	KeyDeviceBrand     = "device_brand"
	KeyDeviceModel     = "device_model"
	KeyOS              = "os"
	KeyOSVersion       = "osVersion"
	KeyDeviceType      = "deviceType"
	KeyArchitecture    = "architecture"
	KeyCollectedAt     = "collectedAt"
	KeyCollectDuration = "collectDuration"
	KeySessionKey      = "sessionKey"
)

// ErrDuplicate is returned when a key is written twice.
var ErrDuplicate = errors.New("key already set")

// Profile is a flat, insertion-ordered record. Every key is written at most
// once. A Profile belongs to a single run and is not safe for concurrent use.
type Profile struct {
	fields map[string]any
	order  []string
}

// New returns an empty Profile.
func New() *Profile {
	return &Profile{fields: make(map[string]any)}
}

// Set writes key once.
func (p *Profile) Set(key string, v any) error {
	if _, ok := p.fields[key]; ok {
		return fmt.Errorf("%s: %w", key, ErrDuplicate)
	}
	p.fields[key] = v
	p.order = append(p.order, key)
	return nil
}

// Get returns the value stored under key.
func (p *Profile) Get(key string) (any, bool) {
	v, ok := p.fields[key]
	return v, ok
}

// Result returns the probe result stored under key, if key holds one.
func (p *Profile) Result(key string) (Result, bool) {
	v, ok := p.fields[key]
	if !ok {
		return Result{}, false
	}
	r, ok := v.(Result)
	return r, ok
}

// Has reports whether key was written.
func (p *Profile) Has(key string) bool {
	_, ok := p.fields[key]
	return ok
}

// Keys returns keys in write order.
func (p *Profile) Keys() []string {
	return slices.Clone(p.order)
}

// Missing returns the keys of want that were never written.
func (p *Profile) Missing(want []string) []string {
	var out []string
	for _, k := range want {
		if !p.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// MarshalJSON encodes the profile as one object, keys in write order.
func (p *Profile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.fields[k])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
