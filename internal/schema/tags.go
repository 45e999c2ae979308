package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeSource selects the clock reading used for auto-timestamp columns.
type TimeSource int

const (
	// UTC stamps with the current UTC time.
	UTC TimeSource = iota
	// Local stamps with the current local time.
	Local
)

// String returns "utc" or "local".
func (s TimeSource) String() string {
	if s == Local {
		return "local"
	}
	return "utc"
}

// ParseTimeSource parses "utc" or "local" (case-insensitive, empty = utc).
func ParseTimeSource(s string) (TimeSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utc":
		return UTC, nil
	case "local":
		return Local, nil
	default:
		return UTC, fmt.Errorf("%w: unknown time source %q", ErrMetadata, s)
	}
}

// columnTag is the parsed form of a db struct tag.
type columnTag struct {
	Column       string
	Skip         bool
	Key          bool
	Identity     bool
	IgnoreInsert bool
	IgnoreUpdate bool
	IgnoreSelect bool
	Order        int
	HasOrder     bool
	UpdatedAt    bool
	Source       TimeSource
	OffsetHours  int
	Status       bool
	Deleted      any
	HasDeleted   bool
}

// parseDBTag parses db tag options.
//
// Supported formats:
//   - "-"                      -> not mapped
//   - "column"                 -> column override
//   - ",key,identity"          -> field name as column, key + identity
//   - "Name,noupdate,order=2"  -> column "Name", ignored on update, sort order 2
//   - "Modified,updatedat,local,offset=2"
//   - "State,status,deleted=3"
//
//nolint:gocyclo,cyclop // Flat option switch.
func parseDBTag(tag string) (columnTag, error) {
	var ct columnTag

	parts := strings.Split(tag, ",")
	ct.Column = strings.TrimSpace(parts[0])
	if ct.Column == "-" && len(parts) == 1 {
		ct.Skip = true
		return ct, nil
	}

	for _, raw := range parts[1:] {
		opt := strings.TrimSpace(raw)
		name, value, hasValue := strings.Cut(opt, "=")

		switch name {
		case "":
			continue
		case "key", "pk":
			ct.Key = true
		case "identity":
			ct.Identity = true
		case "noinsert":
			ct.IgnoreInsert = true
		case "noupdate":
			ct.IgnoreUpdate = true
		case "noselect":
			ct.IgnoreSelect = true
		case "readonly":
			ct.IgnoreInsert = true
			ct.IgnoreUpdate = true
		case "updatedat":
			ct.UpdatedAt = true
		case "utc":
			ct.Source = UTC
		case "local":
			ct.Source = Local
		case "status":
			ct.Status = true
		case "order", "offset":
			if !hasValue {
				return ct, fmt.Errorf("%w: option %q needs a value", ErrMetadata, name)
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return ct, fmt.Errorf("%w: option %q: %v", ErrMetadata, name, err)
			}
			if name == "order" {
				ct.Order, ct.HasOrder = n, true
			} else {
				ct.OffsetHours = n
			}
		case "deleted":
			if !hasValue {
				return ct, fmt.Errorf("%w: option %q needs a value", ErrMetadata, name)
			}
			ct.Deleted, ct.HasDeleted = value, true
		default:
			return ct, fmt.Errorf("%w: unknown db tag option %q", ErrMetadata, opt)
		}
	}

	return ct, nil
}

// joinTag is the parsed form of a join struct tag.
type joinTag struct {
	Kind        JoinKind
	Key         string
	ExternalKey string
	Table       string
	Schema      string
	Alias       string
}

// parseJoinTag parses "<kind>,key=<col>,ref=<col>,table=<t>,schema=<s>,alias=<a>".
func parseJoinTag(tag string) (joinTag, error) {
	var jt joinTag

	parts := strings.Split(tag, ",")
	kind, err := ParseJoinKind(parts[0])
	if err != nil {
		return jt, err
	}
	jt.Kind = kind

	for _, raw := range parts[1:] {
		opt := strings.TrimSpace(raw)
		if opt == "" {
			continue
		}
		name, value, ok := strings.Cut(opt, "=")
		if !ok {
			return jt, fmt.Errorf("%w: join option %q needs a value", ErrMetadata, opt)
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(name) {
		case "key":
			jt.Key = value
		case "ref":
			jt.ExternalKey = value
		case "table":
			jt.Table = value
		case "schema":
			jt.Schema = value
		case "alias":
			jt.Alias = value
		default:
			return jt, fmt.Errorf("%w: unknown join tag option %q", ErrMetadata, opt)
		}
	}

	return jt, nil
}
