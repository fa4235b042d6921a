package codedep

import "errors"

// ErrTUDiagnostic is returned (wrapped) when a translation unit's parse
// tree contains a syntax error — tree-sitter's stand-in for a front-end
// diagnostic whose severity exceeds the warning threshold. This kind is
// always fatal: it aborts the whole run rather than being logged and
// skipped like a per-edge resolution failure.
var ErrTUDiagnostic = errors.New("codedep: translation unit has a parse error")
