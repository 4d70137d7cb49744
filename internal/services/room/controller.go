package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/impostorgame/internal/dependencies/clock"
	"github.com/mcoot/impostorgame/internal/dependencies/ids"
	"github.com/mcoot/impostorgame/internal/dependencies/random"
	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/services/outcome"
	"github.com/mcoot/impostorgame/internal/services/roster"
	"github.com/mcoot/impostorgame/internal/services/turn"
	"github.com/mcoot/impostorgame/internal/services/voting"
	"github.com/mcoot/impostorgame/internal/services/wordbank"
	"github.com/mcoot/impostorgame/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 4
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// MaxCodeAttempts bounds how many codes are tried before giving up
	MaxCodeAttempts = 10
)

// Controller is the room state machine. It is the only component that changes
// a room's status, and every operation commits as one atomic storage update.
type Controller struct {
	storage   storage.Storage
	words     wordbank.ServiceInterface
	publisher Publisher
	clock     clock.Clock
	random    random.Random
	ids       ids.Generator
	logger    *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	words wordbank.ServiceInterface,
	publisher Publisher,
	clock clock.Clock,
	random random.Random,
	ids ids.Generator,
	logger *slog.Logger,
) *Controller {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Controller{
		storage:   storage,
		words:     words,
		publisher: publisher,
		clock:     clock,
		random:    random,
		ids:       ids,
		logger:    logger,
	}
}

// CreateRoom opens a WAITING room for theme with a freshly drawn secret word
func (c *Controller) CreateRoom(ctx context.Context, theme string, impostorCount int) (*model.RoomState, error) {
	if impostorCount < model.MinImpostors || impostorCount > model.MaxImpostors {
		return nil, fmt.Errorf("%w: got %d", model.ErrInvalidImpostorCount, impostorCount)
	}

	pick, err := c.words.PickWord(ctx, theme)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code := model.RoomCode(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		state := &model.RoomState{
			Room: model.Room{
				Code:          code,
				Theme:         pick.Category,
				ImpostorCount: impostorCount,
				SecretWord:    pick.Word,
				Status:        model.StatusWaiting,
				RoundState:    model.RoundTurnLoop,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		}

		err := c.storage.CreateRoom(ctx, state)
		if errors.Is(err, model.ErrCodeCollision) {
			c.logger.Warn("room code collision",
				slog.String("room_code", string(code)),
				slog.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}

		c.logger.Info("room created",
			slog.String("room_code", string(code)),
			slog.String("theme", pick.Category),
			slog.Int("impostor_count", impostorCount))
		c.publish(ctx, model.EventRoomCreated, state, "")
		return state, nil
	}

	c.logger.Error("could not allocate room code", slog.Int("attempts", MaxCodeAttempts))
	return nil, model.ErrExhaustedCodeSpace
}

// JoinRoom seats a player, or returns the existing player with the same name
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, name string) (*model.Player, error) {
	name, err := roster.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	var (
		joined  model.Player
		created bool
	)
	state, err := c.storage.UpdateRoom(ctx, code, func(state *model.RoomState) error {
		now := c.clock.Now()
		p, isNew, err := roster.Join(state, model.PlayerID(c.ids.NewID()), name, now)
		if err != nil {
			return err
		}
		joined, created = *p, isNew
		if !isNew {
			return storage.ErrNoChanges
		}
		state.Room.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		c.logger.Info("player joined",
			slog.String("room_code", string(code)),
			slog.String("player_id", string(joined.ID)),
			slog.Bool("is_host", joined.IsHost))
		c.publish(ctx, model.EventPlayerJoined, state, joined.ID)
	}
	return &joined, nil
}

// StartGame assigns roles and opens the first round. Only one concurrent caller
// can succeed; the others observe ErrInvalidState.
func (c *Controller) StartGame(ctx context.Context, code model.RoomCode) (*model.RoomState, error) {
	state, err := c.storage.UpdateRoom(ctx, code, func(state *model.RoomState) error {
		if state.Room.Status != model.StatusWaiting {
			return fmt.Errorf("%w: game already started in room %s", model.ErrInvalidState, code)
		}
		if err := roster.AssignRoles(state, c.random); err != nil {
			return err
		}
		if err := state.Room.TransitionTo(model.StatusPlaying); err != nil {
			return err
		}
		turn.StartRound(state)
		state.Room.UpdatedAt = c.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.String("room_code", string(code)),
		slog.Int("players", len(state.Players)),
		slog.Int("impostor_count", state.Room.ImpostorCount))
	c.publish(ctx, model.EventGameStarted, state, "")
	return state, nil
}

// PassTurn advances the speaking pointer. A non-nil expectedIndex guards
// against a pass meant for a turn that has already moved on.
func (c *Controller) PassTurn(ctx context.Context, code model.RoomCode, expectedIndex *int) (*model.RoomState, error) {
	var finished bool
	state, err := c.storage.UpdateRoom(ctx, code, func(state *model.RoomState) error {
		var err error
		finished, err = turn.Pass(state, expectedIndex)
		if err != nil {
			return err
		}
		state.Room.UpdatedAt = c.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if finished {
		c.logger.Info("round finished", slog.String("room_code", string(code)))
		c.publish(ctx, model.EventRoundFinished, state, "")
	} else {
		c.publish(ctx, model.EventTurnPassed, state, "")
	}
	return state, nil
}

// DecideNextStep starts another clue round or opens voting once a round has finished
func (c *Controller) DecideNextStep(ctx context.Context, code model.RoomCode, decision model.Decision) (*model.RoomState, error) {
	if decision != model.DecisionNewRound && decision != model.DecisionVote {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidDecision, decision)
	}

	state, err := c.storage.UpdateRoom(ctx, code, func(state *model.RoomState) error {
		room := &state.Room
		if room.Status != model.StatusPlaying || room.RoundState != model.RoundRoundFinished {
			return fmt.Errorf("%w: round is not finished (status %s/%s)", model.ErrInvalidState, room.Status, room.RoundState)
		}

		switch decision {
		case model.DecisionNewRound:
			turn.StartRound(state)
		case model.DecisionVote:
			if err := room.TransitionTo(model.StatusVoting); err != nil {
				return err
			}
			// A new generation leaves earlier ballots out of this round's count
			room.RoundGeneration++
		}
		room.UpdatedAt = c.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("next step decided",
		slog.String("room_code", string(code)),
		slog.String("decision", string(decision)))
	if decision == model.DecisionVote {
		c.publish(ctx, model.EventVotingOpened, state, "")
	} else {
		c.publish(ctx, model.EventNewRound, state, "")
	}
	return state, nil
}

// CastVote records a ballot; an empty candidate is a skip. The ballot that
// completes the round also resolves it, in the same atomic update, so
// resolution happens exactly once.
func (c *Controller) CastVote(ctx context.Context, code model.RoomCode, voter, candidate model.PlayerID) (*model.VoteOutcome, error) {
	var result model.VoteOutcome
	state, err := c.storage.UpdateRoom(ctx, code, func(state *model.RoomState) error {
		result = model.VoteOutcome{}
		now := c.clock.Now()

		complete, err := voting.Cast(state, voter, candidate, now)
		if err != nil {
			return err
		}
		result.BallotsCast = len(state.CurrentBallots())
		result.AliveCount = len(state.AlivePlayers())
		state.Room.UpdatedAt = now
		if !complete {
			result.Status = state.Room.Status
			return nil
		}

		if err := c.resolve(state); err != nil {
			return err
		}
		result.Resolved = true
		result.EliminatedID = state.Room.LastEliminatedID
		result.Winner = state.Room.Winner
		result.Status = state.Room.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, model.EventVoteCast, state, voter)
	if !result.Resolved {
		return &result, nil
	}

	c.logger.Info("voting resolved",
		slog.String("room_code", string(code)),
		slog.String("eliminated", string(result.EliminatedID)),
		slog.String("winner", string(result.Winner)))
	if result.Winner != model.WinnerNone {
		c.logger.Info("game over",
			slog.String("room_code", string(code)),
			slog.String("winner", string(result.Winner)))
		c.publish(ctx, model.EventGameOver, state, "")
	} else {
		c.publish(ctx, model.EventVotingResolved, state, "")
	}
	return &result, nil
}

// resolve applies the plurality result and moves to RESULTS or GAME_OVER.
// The status guard makes a second resolution attempt fail instead of tallying twice.
func (c *Controller) resolve(state *model.RoomState) error {
	room := &state.Room
	if room.Status != model.StatusVoting {
		return fmt.Errorf("%w: voting already resolved", model.ErrInvalidState)
	}

	room.LastEliminatedID = voting.Resolve(state)

	// Alive counts already exclude the player just ejected
	winner := outcome.EvaluateRoom(state)
	if winner != model.WinnerNone {
		room.Winner = winner
		return room.TransitionTo(model.StatusGameOver)
	}

	if err := room.TransitionTo(model.StatusResults); err != nil {
		return err
	}
	turn.StartRound(state)
	return nil
}

// ContinueGame leaves the results screen and starts the next clue round
func (c *Controller) ContinueGame(ctx context.Context, code model.RoomCode) (*model.RoomState, error) {
	state, err := c.storage.UpdateRoom(ctx, code, func(state *model.RoomState) error {
		if state.Room.Status != model.StatusResults {
			return fmt.Errorf("%w: no results to continue from (status %s)", model.ErrInvalidState, state.Room.Status)
		}
		if err := state.Room.TransitionTo(model.StatusPlaying); err != nil {
			return err
		}
		turn.StartRound(state)
		state.Room.UpdatedAt = c.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, model.EventGameContinued, state, "")
	return state, nil
}

// RestartGame deals a new game to the same table from any status: new word
// from the same theme, new impostors, everyone alive, winner and last
// elimination cleared.
func (c *Controller) RestartGame(ctx context.Context, code model.RoomCode) (*model.RoomState, error) {
	current, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	pick, err := c.words.PickWord(ctx, current.Room.Theme)
	if err != nil {
		return nil, err
	}

	state, err := c.storage.UpdateRoom(ctx, code, func(state *model.RoomState) error {
		room := &state.Room
		if err := roster.AssignRoles(state, c.random); err != nil {
			return err
		}
		if err := room.TransitionTo(model.StatusPlaying); err != nil {
			return err
		}
		room.SecretWord = pick.Word
		room.Winner = model.WinnerNone
		room.LastEliminatedID = ""
		room.RoundGeneration++
		room.UpdatedAt = c.clock.Now()
		turn.StartRound(state)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("game restarted",
		slog.String("room_code", string(code)),
		slog.Int("players", len(state.Players)))
	c.publish(ctx, model.EventGameRestarted, state, "")
	return state, nil
}

// GetSnapshot returns the room as seen by viewer (empty for the public view)
func (c *Controller) GetSnapshot(ctx context.Context, code model.RoomCode, viewer model.PlayerID) (*model.RoomSnapshot, error) {
	state, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	snap := state.Snapshot(viewer)
	return &snap, nil
}

// Themes lists the themes a room can be created with
func (c *Controller) Themes(ctx context.Context) ([]string, error) {
	return c.words.Categories(ctx)
}

func (c *Controller) publish(ctx context.Context, eventType model.EventType, state *model.RoomState, actor model.PlayerID) {
	c.publisher.Publish(ctx, model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		RoomCode:  state.Room.Code,
		PlayerID:  actor,
		Snapshot:  state.Snapshot(""),
	})
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, theme string, impostorCount int) (*model.RoomState, error)
	JoinRoom(ctx context.Context, code model.RoomCode, name string) (*model.Player, error)
	StartGame(ctx context.Context, code model.RoomCode) (*model.RoomState, error)
	PassTurn(ctx context.Context, code model.RoomCode, expectedIndex *int) (*model.RoomState, error)
	DecideNextStep(ctx context.Context, code model.RoomCode, decision model.Decision) (*model.RoomState, error)
	CastVote(ctx context.Context, code model.RoomCode, voter, candidate model.PlayerID) (*model.VoteOutcome, error)
	ContinueGame(ctx context.Context, code model.RoomCode) (*model.RoomState, error)
	RestartGame(ctx context.Context, code model.RoomCode) (*model.RoomState, error)
	GetSnapshot(ctx context.Context, code model.RoomCode, viewer model.PlayerID) (*model.RoomSnapshot, error)
	Themes(ctx context.Context) ([]string, error)
}

var _ ControllerInterface = (*Controller)(nil)
