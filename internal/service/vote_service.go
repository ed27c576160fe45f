package service

import (
	"context"
	"time"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/google/uuid"
)

type VoteService struct {
	roomRepo   repository.RoomRepository
	playerRepo repository.PlayerRepository
	logRepo    repository.GameLogRepository
	phases     *PhaseService
	locks      *LockKeeper
}

func NewVoteService(
	roomRepo repository.RoomRepository,
	playerRepo repository.PlayerRepository,
	logRepo repository.GameLogRepository,
	phases *PhaseService,
	locks *LockKeeper,
) *VoteService {
	return &VoteService{
		roomRepo:   roomRepo,
		playerRepo: playerRepo,
		logRepo:    logRepo,
		phases:     phases,
		locks:      locks,
	}
}

// Submit records a ballot for the current round. A voter may vote again;
// resolution counts only their latest ballot. Dead targets are accepted here,
// only dead voters are rejected.
func (s *VoteService) Submit(ctx context.Context, voterID, targetID uuid.UUID) error {
	voter, err := s.playerRepo.GetByID(ctx, voterID)
	if err != nil {
		return translateNotFound(err, domain.ErrPlayerNotFound)
	}
	if !voter.IsAlive {
		return domain.ErrDeadPlayerAction
	}

	target, err := s.playerRepo.GetByID(ctx, targetID)
	if err != nil {
		return translateNotFound(err, domain.ErrTargetNotFound)
	}

	round, err := s.currentRound(ctx, voter.RoomID)
	if err != nil {
		return err
	}

	entry, err := domain.NewGameLog(voter.GameID, round, domain.LogTypeVote, domain.VotePayload{
		VoterID:    voter.ID,
		TargetID:   target.ID,
		VoterName:  voter.DisplayName(),
		TargetName: target.DisplayName(),
	})
	if err != nil {
		return err
	}
	return s.logRepo.Append(ctx, entry)
}

// Resolve tallies the current round's ballots and executes the leader.
func (s *VoteService) Resolve(ctx context.Context, roomID uuid.UUID) (*domain.VoteResult, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Game == nil {
		return nil, domain.ErrGameNotFound
	}
	return s.resolve(ctx, room, room.Game)
}

// ResolveIfAllVoted resolves the vote only when every alive player has a
// ballot in and the room is still in the voting phase. The phase guard keeps
// a second concurrent caller from resolving the same round twice. Returns
// (nil, nil) when nothing was resolved.
func (s *VoteService) ResolveIfAllVoted(ctx context.Context, roomID uuid.UUID) (*domain.VoteResult, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Game == nil {
		return nil, domain.ErrGameNotFound
	}

	phase, err := s.phases.CurrentPhase(ctx, room.Game.ID)
	if err != nil {
		return nil, err
	}
	if phase != domain.PhaseVoting {
		return nil, nil
	}

	allVoted, err := s.allVoted(ctx, room)
	if err != nil {
		return nil, err
	}
	if !allVoted {
		return nil, nil
	}
	return s.resolve(ctx, room, room.Game)
}

// CheckAllVoted reports whether every alive player has a ballot in the
// current round.
func (s *VoteService) CheckAllVoted(ctx context.Context, roomID uuid.UUID) (bool, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return false, translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Game == nil {
		return false, domain.ErrGameNotFound
	}
	return s.allVoted(ctx, room)
}

func (s *VoteService) allVoted(ctx context.Context, room *domain.Room) (bool, error) {
	ballots, err := s.currentBallots(ctx, room.Game)
	if err != nil {
		return false, err
	}

	alive := 0
	for _, p := range room.Players {
		if p.IsAlive {
			alive++
		}
	}
	return len(ballots) >= alive, nil
}

// resolve assumes the room lock is held.
func (s *VoteService) resolve(ctx context.Context, room *domain.Room, game *domain.Game) (*domain.VoteResult, error) {
	ballots, err := s.currentBallots(ctx, game)
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int)
	maxVotes := 0
	var executedID uuid.UUID
	for _, b := range ballots {
		counts[b.TargetID]++
		// Strictly greater keeps the first target to reach the leading
		// count ahead on ties.
		if counts[b.TargetID] > maxVotes {
			maxVotes = counts[b.TargetID]
			executedID = b.TargetID
		}
	}

	result := &domain.VoteResult{VoteCounts: counts}

	if executedID != uuid.Nil {
		for i := range room.Players {
			if room.Players[i].ID != executedID {
				continue
			}
			executed := room.Players[i]
			executed.IsAlive = false
			if err := s.playerRepo.Update(ctx, &executed); err != nil {
				return nil, err
			}

			payload := domain.ExecutionPayload{
				PlayerID:   executed.ID,
				PlayerName: executed.DisplayName(),
				Votes:      maxVotes,
			}
			entry, err := domain.NewGameLog(game.ID, game.Round, domain.LogTypeExecution, payload)
			if err != nil {
				return nil, err
			}
			if err := s.logRepo.Append(ctx, entry); err != nil {
				return nil, err
			}
			result.Executed = &payload
			break
		}
	}

	transition, err := s.phases.advance(ctx, room, game)
	if err != nil {
		return nil, err
	}
	result.NextPhase = transition.CurrentPhase
	return result, nil
}

// currentBallots returns one ballot per voter, last write wins, ordered by
// the time of each voter's effective (latest) ballot.
func (s *VoteService) currentBallots(ctx context.Context, game *domain.Game) ([]domain.VotePayload, error) {
	entries, err := s.logRepo.ListByTypes(ctx, game.ID, []string{domain.LogTypeVote}, game.Round, time.Now().Add(-StaleActionWindow))
	if err != nil {
		return nil, err
	}

	var ordered []domain.VotePayload
	position := make(map[uuid.UUID]int)
	for _, e := range entries {
		var ballot domain.VotePayload
		if err := e.DecodePayload(&ballot); err != nil {
			continue
		}
		if ballot.VoterID == uuid.Nil || ballot.TargetID == uuid.Nil {
			continue
		}
		if i, ok := position[ballot.VoterID]; ok {
			// Supersede the voter's earlier ballot and move them to the
			// back of the effective order.
			ordered = append(ordered[:i], ordered[i+1:]...)
			for voter, pos := range position {
				if pos > i {
					position[voter] = pos - 1
				}
			}
		}
		position[ballot.VoterID] = len(ordered)
		ordered = append(ordered, ballot)
	}
	return ordered, nil
}

// currentRound resolves the room's open round. Ballots are only valid while
// the room is ACTIVE.
func (s *VoteService) currentRound(ctx context.Context, roomID uuid.UUID) (int, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return 0, translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Status != domain.RoomStatusActive {
		return 0, domain.ErrRoomNotActive
	}
	if room.Game == nil {
		return 0, domain.ErrGameNotFound
	}
	return room.Game.Round, nil
}
