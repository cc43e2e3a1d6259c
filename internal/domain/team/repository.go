package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	Count(ctx context.Context) (int, error)
	// Create stores the team with its line items, bumping entrant chosen counts and the league team count.
	Create(ctx context.Context, team Team) error
	// Delete removes the team and reverses what Create counted.
	Delete(ctx context.Context, teamID string) (bool, error)
	// EditRoster locks the team, lets decide compute the change from the locked state and applies it atomically.
	EditRoster(ctx context.Context, teamID string, decide func(current Team) (RosterChange, error)) (Team, error)
}
