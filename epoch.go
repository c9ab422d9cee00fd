package framegraph

// SharedValidityTag is the reserved tag carried by resources shared across
// executions. It is never produced by AdvanceEpoch, so shared handles stay
// valid when the per-execution epoch rotates.
const SharedValidityTag uint16 = 0xFFFF

// defaultValidityTag seeds a fresh ExecutionContext so that handles made
// before the first AdvanceEpoch are already valid.
const defaultValidityTag uint16 = 1

// ExecutionContext owns the rotating validity epoch for one frame graph.
// Every handle minted during an execution embeds the current tag; after
// the epoch advances those handles fail Valid, which defends against
// pooled authoring objects that retain handle values from a prior
// execution without any per-object cleanup.
//
// The tag is read by every validity check and written exactly once per
// execution. Advance it only after the previous execution has fully
// completed; it must not race with in-flight validity checks.
type ExecutionContext struct {
	tag uint16
}

// NewExecutionContext returns a context holding a valid initial epoch.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{tag: defaultValidityTag}
}

// Current returns the validity tag of the execution in progress.
// The tag is never zero and never SharedValidityTag.
func (c *ExecutionContext) Current() uint16 {
	return c.tag
}

// AdvanceEpoch derives the next epoch tag deterministically from
// executionIndex and installs it, returning the new tag. The scrambled
// result is re-rolled with successive salts while it is zero, the reserved
// shared tag, or equal to the previous epoch, so two consecutive
// executions never share a tag.
func (c *ExecutionContext) AdvanceEpoch(executionIndex uint32) uint16 {
	prev := c.tag
	tag := scrambleTag(executionIndex)
	for salt := uint32(1); tag == 0 || tag == SharedValidityTag || tag == prev; salt++ {
		tag = scrambleTag(executionIndex + salt)
	}
	c.tag = tag
	return tag
}

// scrambleTag mixes an execution index into a 16-bit tag. This is the
// lowbias32 integer hash truncated to 16 bits; consecutive indices map to
// well-separated tags, so collisions between neighboring executions are
// unlikely before the re-roll in AdvanceEpoch even runs.
func scrambleTag(x uint32) uint16 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return uint16(x)
}
