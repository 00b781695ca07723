package challenges

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaizenhq/kaizen/internal/cli"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/progress"
	"github.com/kaizenhq/kaizen/internal/storage"
	"github.com/kaizenhq/kaizen/internal/utils"
	"github.com/kaizenhq/kaizen/internal/validation"
)

type ChallengeCmd struct {
	Create      ChallengeCreateCmd      `cmd:"" help:"Start a challenge around one of your habits."`
	Join        ChallengeJoinCmd        `cmd:"" help:"Join a challenge."`
	Leave       ChallengeLeaveCmd       `cmd:"" help:"Leave a challenge."`
	List        ChallengeListCmd        `cmd:"" help:"List challenges."`
	Mark        ChallengeMarkCmd        `cmd:"" help:"Toggle your completion of a challenge's habit for a day."`
	Leaderboard ChallengeLeaderboardCmd `cmd:"" help:"Rank the members of a challenge."`
}

type ChallengeCreateCmd struct {
	Name  string `arg:"" help:"Challenge name."`
	Habit string `help:"Name of the habit members complete." required:""`
	Start string `help:"First day (YYYY-MM-DD). Defaults to today."`
	Days  int    `help:"Length in days." default:"30"`
	End   string `help:"Last day (YYYY-MM-DD). Overrides --days."`
}

func (c *ChallengeCreateCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	userID, err := ctx.User(settings)
	if err != nil {
		return err
	}
	habit, err := ctx.FindHabit(userID, c.Habit)
	if err != nil {
		return err
	}

	start, err := ctx.Day(settings, c.Start)
	if err != nil {
		return err
	}
	end := c.End
	if end == "" {
		if c.Days < 1 {
			return kerrors.Usagef("--days must be at least 1")
		}
		end = utils.FormatDate(utils.AddDays(start, c.Days-1))
	}

	challenge := models.Challenge{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(c.Name),
		HabitID:   habit.ID,
		OwnerID:   userID,
		StartDay:  utils.FormatDate(start),
		EndDay:    end,
		CreatedAt: time.Now(),
	}
	if err := validation.New().ValidateChallenge(challenge).Err(); err != nil {
		return kerrors.Usagef("%v", err)
	}
	if _, err := ctx.Store.GetChallengeByName(challenge.Name); err == nil {
		return kerrors.Usagef("challenge %q already exists", challenge.Name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if err := ctx.Store.AddChallenge(challenge); err != nil {
		return err
	}
	fmt.Printf("Created challenge %q on %s (%s..%s)\n", challenge.Name, habit.Name, challenge.StartDay, challenge.EndDay)
	return nil
}

// lookup resolves a challenge by name along with the acting user.
func lookup(ctx *cli.Context, name string) (models.Challenge, string, error) {
	settings, err := ctx.Settings()
	if err != nil {
		return models.Challenge{}, "", err
	}
	userID, err := ctx.User(settings)
	if err != nil {
		return models.Challenge{}, "", err
	}
	challenge, err := ctx.Store.GetChallengeByName(name)
	if err != nil {
		return models.Challenge{}, "", fmt.Errorf("challenge %q: %w", name, err)
	}
	return challenge, userID, nil
}

func isMember(ctx *cli.Context, challengeID, userID string) (bool, error) {
	members, err := ctx.Store.GetChallengeMembers(challengeID)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type ChallengeJoinCmd struct {
	Name string `arg:"" help:"Challenge name."`
}

func (c *ChallengeJoinCmd) Run(ctx *cli.Context) error {
	challenge, userID, err := lookup(ctx, c.Name)
	if err != nil {
		return err
	}
	if err := ctx.Store.JoinChallenge(challenge.ID, userID); err != nil {
		return err
	}
	fmt.Printf("Joined challenge %q\n", challenge.Name)
	return nil
}

type ChallengeLeaveCmd struct {
	Name string `arg:"" help:"Challenge name."`
}

func (c *ChallengeLeaveCmd) Run(ctx *cli.Context) error {
	challenge, userID, err := lookup(ctx, c.Name)
	if err != nil {
		return err
	}
	if challenge.OwnerID == userID {
		return kerrors.Usagef("the owner cannot leave challenge %q", challenge.Name)
	}
	if err := ctx.Store.LeaveChallenge(challenge.ID, userID); err != nil {
		return err
	}
	fmt.Printf("Left challenge %q\n", challenge.Name)
	return nil
}

type ChallengeListCmd struct{}

func (c *ChallengeListCmd) Run(ctx *cli.Context) error {
	challenges, err := ctx.Store.GetAllChallenges()
	if err != nil {
		return err
	}
	if len(challenges) == 0 {
		fmt.Println("No challenges found.")
		return nil
	}
	for _, ch := range challenges {
		members, err := ctx.Store.GetChallengeMembers(ch.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%-24s %s..%s  %d member(s)\n", ch.Name, ch.StartDay, ch.EndDay, len(members))
	}
	return nil
}

type ChallengeMarkCmd struct {
	Name string `arg:"" help:"Challenge name."`
	Date string `help:"Day to mark (YYYY-MM-DD). Defaults to today."`
}

func (c *ChallengeMarkCmd) Run(ctx *cli.Context) error {
	challenge, userID, err := lookup(ctx, c.Name)
	if err != nil {
		return err
	}
	ok, err := isMember(ctx, challenge.ID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return kerrors.Usagef("join challenge %q before marking it", challenge.Name)
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	day, err := ctx.Day(settings, c.Date)
	if err != nil {
		return err
	}
	dayStr := utils.FormatDate(day)
	if dayStr < challenge.StartDay || dayStr > challenge.EndDay {
		return kerrors.Usagef("%s is outside challenge %q (%s..%s)", dayStr, challenge.Name, challenge.StartDay, challenge.EndDay)
	}

	marked, err := ctx.Store.ToggleCompletion(challenge.HabitID, userID, dayStr)
	if err != nil {
		return err
	}
	if marked {
		fmt.Printf("Marked %q for %s\n", challenge.Name, dayStr)
	} else {
		fmt.Printf("Unmarked %q for %s\n", challenge.Name, dayStr)
	}
	return nil
}

type ChallengeLeaderboardCmd struct {
	Name string `arg:"" help:"Challenge name."`
}

func (c *ChallengeLeaderboardCmd) Run(ctx *cli.Context) error {
	challenge, userID, err := lookup(ctx, c.Name)
	if err != nil {
		return err
	}
	entries, err := Standings(ctx.Store, challenge)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s..%s)\n\n", challenge.Name, challenge.StartDay, challenge.EndDay)
	for _, e := range entries {
		you := ""
		if e.UserID == userID {
			you = "  ← you"
		}
		fmt.Printf("%3d. %-36s %3d%s\n", e.Rank, e.UserID, e.Count, you)
	}
	return nil
}

// Standings ranks a challenge's current members.
func Standings(store storage.Provider, challenge models.Challenge) ([]models.LeaderboardEntry, error) {
	members, err := store.GetChallengeMembers(challenge.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}

	completions, err := store.GetCompletionsForHabit(challenge.HabitID, challenge.StartDay, challenge.EndDay)
	if err != nil {
		return nil, err
	}
	return progress.Leaderboard(ids, completions, challenge.HabitID, challenge.StartDay, challenge.EndDay), nil
}
