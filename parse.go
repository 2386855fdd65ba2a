package qskema

import (
	"context"
	"io"
)

// ParseFrom is the primary document entry point. It decodes the Source,
// enforcing size and duplicate-key options, and delegates validation to the
// Schema in ModeJSON. YAML sources default to inline quantity records.
func ParseFrom[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) (T, error) {
	var zero T
	if s == nil {
		return zero, singleIssue(CodeParseError, "nil schema")
	}
	opt := lastOpt(opts)
	ctx = documentContext(ctx, src, opt)
	v, err := src.Decode(opt)
	if err != nil {
		return zero, toIssues(err)
	}
	return s.Parse(ctx, v)
}

// ParseFromWithMeta collects presence metadata alongside the parsed value.
// Presence is gathered from the decoded document and merged with what the
// Schema reports.
func ParseFromWithMeta[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) (Decoded[T], error) {
	var zero Decoded[T]
	if s == nil {
		return zero, singleIssue(CodeParseError, "nil schema")
	}
	opt := normalizeWithMetaOpt(opts)
	ctx = documentContext(ctx, src, opt)
	v, err := src.Decode(opt)
	if err != nil {
		return zero, toIssues(err)
	}
	dm, err := s.ParseWithMeta(ctx, v)
	if err != nil {
		return dm, err
	}
	if opt.Presence.Collect {
		dm.Presence = applyPresenceOptions(mergePresenceMaps(dm.Presence, collectPresenceMapFromValue(v)), opt.Presence)
	} else {
		dm.Presence = nil
	}
	return dm, nil
}

// StreamParse validates a JSON document read from an io.Reader.
func StreamParse[T any](ctx context.Context, s Schema[T], r io.Reader, opts ...ParseOpt) (T, error) {
	return ParseFrom(ctx, s, JSONReader(r), opts...)
}

// ---- helpers (parse options, error mapping) ----

func lastOpt(opts []ParseOpt) ParseOpt {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}

func normalizeWithMetaOpt(opts []ParseOpt) ParseOpt {
	opt := lastOpt(opts)
	if !opt.Presence.Collect && len(opt.Presence.Include) == 0 && len(opt.Presence.Exclude) == 0 {
		opt.Presence.Collect = true
	}
	return opt
}

func documentContext(ctx context.Context, src Source, opt ParseOpt) context.Context {
	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	ctx = WithMode(ctx, ModeJSON)
	if src.Format() == FormatYAML && !hasEmbedding(ctx) {
		ctx = WithEmbedding(ctx, EmbedInline)
	}
	return ctx
}

func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	return AppendIssues(nil, Issue{Code: CodeParseError, Message: err.Error(), Cause: err})
}

func singleIssue(code, msg string) Issues { return AppendIssues(nil, Issue{Path: "/", Code: code, Message: msg}) }
