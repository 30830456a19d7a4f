// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"
	"strings"

	"github.com/Enclicainteractive/volt/storage"
)

// Listing is one discoverable server entry.
type Listing struct {
	ServerID    string `json:"serverId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	SubmittedBy string `json:"submittedBy,omitempty"`
	SubmittedAt int64  `json:"submittedAt"`
	ApprovedAt  int64  `json:"approvedAt,omitempty"`
}

// discoveryState is the collection's singleton body.
type discoveryState struct {
	Submissions []Listing `json:"submissions"`
	Approved    []Listing `json:"approved"`
}

// DiscoveryService manages the server directory: a moderated submission
// queue and the approved listing.
type DiscoveryService struct {
	db *DB
}

func (service *DiscoveryService) load() (discoveryState, error) {
	var state discoveryState
	body, ok := service.db.cache().View(storage.Discovery)[singletonKey]
	if !ok {
		return state, nil
	}
	return state, storage.Decode(body, &state)
}

func (service *DiscoveryService) edit(ctx context.Context, fn func(*discoveryState) error) error {
	return service.db.cache().Update(ctx, storage.Discovery, func(snap storage.Snapshot) (storage.Snapshot, error) {
		var state discoveryState
		if body, ok := snap[singletonKey]; ok {
			if err := storage.Decode(body, &state); err != nil {
				return nil, err
			}
		}
		if err := fn(&state); err != nil {
			return nil, err
		}
		body, err := storage.Encode(state)
		if err != nil {
			return nil, err
		}
		snap[singletonKey] = body
		return snap, nil
	})
}

// Submit queues a listing for approval.
func (service *DiscoveryService) Submit(ctx context.Context, listing Listing) (err error) {
	defer mon.Task()(&ctx)(&err)

	if listing.ServerID == "" {
		return storage.ErrConstraint.New("listing needs a server id")
	}
	listing.SubmittedAt = now()
	listing.ApprovedAt = 0
	return service.edit(ctx, func(state *discoveryState) error {
		for _, pending := range state.Submissions {
			if pending.ServerID == listing.ServerID {
				return storage.ErrAlreadyExists.New("submission for server %s", listing.ServerID)
			}
		}
		state.Submissions = append(state.Submissions, listing)
		return nil
	})
}

// Approve moves a submission into the approved listing.
func (service *DiscoveryService) Approve(ctx context.Context, serverID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.edit(ctx, func(state *discoveryState) error {
		for i, pending := range state.Submissions {
			if pending.ServerID != serverID {
				continue
			}
			pending.ApprovedAt = now()
			state.Submissions = append(state.Submissions[:i], state.Submissions[i+1:]...)
			state.Approved = append(state.Approved, pending)
			return nil
		}
		return storage.ErrNotFound.New("submission for server %s", serverID)
	})
}

// Reject drops a submission.
func (service *DiscoveryService) Reject(ctx context.Context, serverID string) error {
	return service.edit(ctx, func(state *discoveryState) error {
		for i, pending := range state.Submissions {
			if pending.ServerID == serverID {
				state.Submissions = append(state.Submissions[:i], state.Submissions[i+1:]...)
				return nil
			}
		}
		return storage.ErrNotFound.New("submission for server %s", serverID)
	})
}

// Remove drops an approved listing.
func (service *DiscoveryService) Remove(ctx context.Context, serverID string) error {
	return service.edit(ctx, func(state *discoveryState) error {
		for i, approved := range state.Approved {
			if approved.ServerID == serverID {
				state.Approved = append(state.Approved[:i], state.Approved[i+1:]...)
				return nil
			}
		}
		return storage.ErrNotFound.New("approved listing for server %s", serverID)
	})
}

// ListApproved pages through approved listings, optionally filtered by
// category and case-insensitive name substring. page starts at 1.
func (service *DiscoveryService) ListApproved(page, pageSize int, category, query string) ([]Listing, int, error) {
	state, err := service.load()
	if err != nil {
		return nil, 0, err
	}
	var matched []Listing
	needle := strings.ToLower(query)
	for _, listing := range state.Approved {
		if category != "" && listing.Category != category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(listing.Name), needle) {
			continue
		}
		matched = append(matched, listing)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ApprovedAt != matched[j].ApprovedAt {
			return matched[i].ApprovedAt > matched[j].ApprovedAt
		}
		return matched[i].ServerID < matched[j].ServerID
	})

	total := len(matched)
	if pageSize <= 0 {
		pageSize = 25
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Categories returns the distinct categories across approved listings.
func (service *DiscoveryService) Categories() ([]string, error) {
	state, err := service.load()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var categories []string
	for _, listing := range state.Approved {
		if listing.Category != "" && !seen[listing.Category] {
			seen[listing.Category] = true
			categories = append(categories, listing.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}
