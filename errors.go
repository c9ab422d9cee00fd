package framegraph

import "errors"

// Package errors.
//
// The declaration API distinguishes authoring contract violations, which
// indicate a bug in pass-authoring code and are raised as panics wrapping
// the sentinels below, from record lifecycle errors, which are returned to
// the compiler-facing caller. None of them are transient conditions;
// nothing in this package retries.
var (
	// ErrInvalidHandle is raised when a declaration receives a null or
	// stale handle.
	ErrInvalidHandle = errors.New("framegraph: invalid resource handle")

	// ErrTransientCrossPass is raised when a transient resource is
	// referenced outside the pass that created it.
	ErrTransientCrossPass = errors.New("framegraph: transient resource used by another pass")

	// ErrBuilderDisposed is raised when a builder method is called after
	// Dispose.
	ErrBuilderDisposed = errors.New("framegraph: builder already disposed")

	// ErrRenderFuncSet is raised when SetRenderFunc is called twice on the
	// same pass.
	ErrRenderFuncSet = errors.New("framegraph: render function already set")

	// ErrNotRecording is raised when AddPass is called before NewFrame, or
	// while another builder is still open.
	ErrNotRecording = errors.New("framegraph: graph is not recording")

	// ErrIndexOverflow is raised when more than MaxResourceIndex logical
	// resources are created in one execution.
	ErrIndexOverflow = errors.New("framegraph: resource index exceeds 16-bit budget")

	// ErrAlreadyCreated is returned when a backing object is created twice
	// without an intervening reset. The usual cause is writing the same
	// resource from two creation points in one pass.
	ErrAlreadyCreated = errors.New("framegraph: graphics resource already created")

	// ErrNotCreated is returned when releasing a resource that has no
	// backing object. The compiler should have culled it instead.
	ErrNotCreated = errors.New("framegraph: graphics resource was never created")

	// ErrNoDescriptor is returned when creating a backing object for a
	// record without a valid descriptor (for example an imported resource).
	ErrNoDescriptor = errors.New("framegraph: resource has no descriptor")

	// ErrSharedSlotBusy is returned when a shared resource cannot be
	// registered because per-frame resources already occupy the table.
	ErrSharedSlotBusy = errors.New("framegraph: shared resources must be created before frame recording")

	// ErrNotSupported is returned by allocators for resource kinds the
	// underlying API cannot create.
	ErrNotSupported = errors.New("framegraph: resource kind not supported by allocator")
)
