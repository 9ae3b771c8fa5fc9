package staking

import (
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/safemath"
)

// maxAffiliateDepth bounds the referral tree at six levels; each node
// also carries at most six direct children.
const (
	maxAffiliateDepth  = 6
	maxDirectReferrals = 6
)

// maxAffiliateVisits is the worst-case visit count for a depth-6 traversal
// where every node has up to 6 children (6^6 = 46,656).
// The traversal aborts with ComputeUnitLimitExceeded rather than exceed it.
const maxAffiliateVisits = 6 * 6 * 6 * 6 * 6 * 6

// AffiliateGraph is the host-persisted referral tree: parent/child edges
// between identities, and each identity's current total staking power
// (principal summed across both pools). The core consults it at Claim time
// and mutates it at RegisterReferral; it never stores it itself.
type AffiliateGraph interface {
	Children(id host.Identity) ([]host.Identity, error)
	Parent(id host.Identity) (host.Identity, bool, error)
	StakingPower(id host.Identity) (uint64, error)
	// AddChild attaches referee as a direct child of referrer. Callers
	// must have already validated the edge (RegisterReferral does).
	AddChild(referrer, referee host.Identity) error
}

// RegisterReferral attaches referee as a direct child of referrer in
// graph, after validating the edge: referrer must have
// fewer than 6 direct children, referee must not already have a parent, and
// the edge must not create a cycle or exceed the depth-6 ancestor bound.
func RegisterReferral(graph AffiliateGraph, referrer, referee host.Identity) error {
	if referrer == referee {
		return errInvalidReferral
	}
	if _, hasParent, err := graph.Parent(referee); err != nil {
		return err
	} else if hasParent {
		return errInvalidReferral
	}

	children, err := graph.Children(referrer)
	if err != nil {
		return err
	}
	if len(children) >= maxDirectReferrals {
		return errInvalidReferral
	}

	// Ancestor check: walk up from referrer; if referee appears within
	// depth 6, attaching referee under referrer would close a cycle.
	cur := referrer
	for depth := 0; depth < maxAffiliateDepth; depth++ {
		if cur == referee {
			return errCircular
		}
		parent, ok, err := graph.Parent(cur)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		cur = parent
	}
	if cur == referee {
		return errCircular
	}

	return graph.AddChild(referrer, referee)
}

// AggregateDescendantPower sums the staking power of every descendant of
// root within depth 6, detecting cycles (which must never occur given a
// correctly maintained graph, but are checked defensively: a revisited
// identity aborts with CircularReferenceDetected) and capping total visits
// at 6^6, failing ComputeUnitLimitExceeded if exceeded.
func AggregateDescendantPower(graph AffiliateGraph, root host.Identity) (uint64, error) {
	visited := map[host.Identity]bool{root: true}
	visits := 0

	var total uint64
	var walk func(id host.Identity, depth int) error
	walk = func(id host.Identity, depth int) error {
		if depth >= maxAffiliateDepth {
			return nil
		}
		children, err := graph.Children(id)
		if err != nil {
			return err
		}
		for _, child := range children {
			visits++
			if visits > maxAffiliateVisits {
				return errComputeLimit
			}
			if visited[child] {
				return errCircular
			}
			visited[child] = true

			power, err := graph.StakingPower(child)
			if err != nil {
				return err
			}
			total, err = safemath.Add(total, power)
			if err != nil {
				return err
			}

			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, 0); err != nil {
		return 0, err
	}
	return total, nil
}
