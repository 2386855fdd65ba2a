package qskema

import "strings"

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p PathRef, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params}
}

// UnitIssue converts an error raised by a quantity operation into an Issue at
// p. A *UnitError keeps its kind's code; anything else is a unit_validation
// issue.
func UnitIssue(p PathRef, err error) Issue {
	it := Issue{Path: p.Pointer(), Code: CodeUnitValidation, Message: err.Error(), Cause: err}
	if ue, ok := AsUnitError(err); ok {
		it.Code = ue.Kind.Code()
	}
	return it
}

// RebaseIssues prefixes every issue path with prefix (a JSON Pointer such as
// "/box_vectors"), returning a new slice.
func RebaseIssues(prefix string, iss Issues) Issues {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Path == "" || it.Path == "/" {
			it.Path = prefix
		} else {
			it.Path = prefix + it.Path
		}
		out[i] = it
	}
	return out
}
