package league

import "fmt"

// League groups fantasy teams competing against each other.
type League struct {
	ID            string
	OwnerUserID   string
	Name          string
	NumberOfTeams int
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}
