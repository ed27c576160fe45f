package service

import (
	"context"
	"time"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/google/uuid"
)

type NightService struct {
	roomRepo   repository.RoomRepository
	playerRepo repository.PlayerRepository
	logRepo    repository.GameLogRepository
	phases     *PhaseService
	locks      *LockKeeper
}

func NewNightService(
	roomRepo repository.RoomRepository,
	playerRepo repository.PlayerRepository,
	logRepo repository.GameLogRepository,
	phases *PhaseService,
	locks *LockKeeper,
) *NightService {
	return &NightService{
		roomRepo:   roomRepo,
		playerRepo: playerRepo,
		logRepo:    logRepo,
		phases:     phases,
		locks:      locks,
	}
}

// SubmitAction records a secret night action against the current round. The
// actor must be alive; the target must exist.
func (s *NightService) SubmitAction(ctx context.Context, playerID, targetID uuid.UUID, kind domain.ActionKind, location string) error {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return translateNotFound(err, domain.ErrPlayerNotFound)
	}
	if !player.IsAlive {
		return domain.ErrDeadPlayerAction
	}

	target, err := s.playerRepo.GetByID(ctx, targetID)
	if err != nil {
		return translateNotFound(err, domain.ErrTargetNotFound)
	}

	round, err := s.currentRound(ctx, player.RoomID)
	if err != nil {
		return err
	}

	if location == "" {
		location = "UNKNOWN"
	}
	entry, err := domain.NewGameLog(player.GameID, round, kind.LogType(), domain.NightActionPayload{
		PlayerID:   player.ID,
		TargetID:   target.ID,
		PlayerName: player.DisplayName(),
		TargetName: target.DisplayName(),
		Role:       player.Role,
		Location:   location,
	})
	if err != nil {
		return err
	}
	return s.logRepo.Append(ctx, entry)
}

// SelectLocation records the player's night location pick and mirrors it onto
// the player row for the state snapshot.
func (s *NightService) SelectLocation(ctx context.Context, playerID uuid.UUID, locationID string) error {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return translateNotFound(err, domain.ErrPlayerNotFound)
	}

	round, err := s.currentRound(ctx, player.RoomID)
	if err != nil {
		return err
	}

	player.Location = &locationID
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return err
	}
	entry, err := domain.NewGameLog(player.GameID, round, domain.LogTypeLocationSelected, domain.LocationSelectedPayload{
		PlayerID:   player.ID,
		LocationID: locationID,
	})
	if err != nil {
		return err
	}
	return s.logRepo.Append(ctx, entry)
}

// ResolveNight applies the current round's night actions: heals cancel kills,
// unopposed kills take the target out, arrests are recorded but have no
// lethal effect. Ends by advancing the phase.
func (s *NightService) ResolveNight(ctx context.Context, roomID uuid.UUID) (*domain.NightResult, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Game == nil {
		return nil, domain.ErrGameNotFound
	}
	game := room.Game

	entries, err := s.logRepo.ListByTypes(ctx, game.ID, domain.NightActionLogTypes(), game.Round, time.Now().Add(-StaleActionWindow))
	if err != nil {
		return nil, err
	}

	var kills, heals, arrests []domain.NightActionPayload
	for _, e := range entries {
		var payload domain.NightActionPayload
		if err := e.DecodePayload(&payload); err != nil {
			continue
		}
		if payload.TargetID == uuid.Nil {
			continue
		}
		switch e.Type {
		case domain.ActionKill.LogType():
			kills = append(kills, payload)
		case domain.ActionHeal.LogType():
			heals = append(heals, payload)
		case domain.ActionArrest.LogType():
			arrests = append(arrests, payload)
		}
	}

	playersByID := make(map[uuid.UUID]domain.Player, len(room.Players))
	for _, p := range room.Players {
		playersByID[p.ID] = p
	}
	healed := make(map[uuid.UUID]bool, len(heals))
	for _, h := range heals {
		healed[h.TargetID] = true
	}

	result := &domain.NightResult{
		Killed:   []domain.ActionResult{},
		Saved:    []domain.ActionResult{},
		Arrested: []domain.ActionResult{},
	}
	seen := make(map[uuid.UUID]bool)

	for _, kill := range kills {
		target, ok := playersByID[kill.TargetID]
		if !ok || seen[kill.TargetID] {
			// Unknown targets are skipped; repeated kills count once.
			continue
		}
		seen[kill.TargetID] = true

		if healed[kill.TargetID] {
			result.Saved = append(result.Saved, domain.ActionResult{
				PlayerID:   kill.TargetID,
				PlayerName: kill.TargetName,
			})
			continue
		}

		target.IsAlive = false
		if err := s.playerRepo.Update(ctx, &target); err != nil {
			return nil, err
		}
		result.Killed = append(result.Killed, domain.ActionResult{
			PlayerID:   kill.TargetID,
			PlayerName: kill.TargetName,
		})
	}

	arrested := make(map[uuid.UUID]bool)
	for _, arrest := range arrests {
		if _, ok := playersByID[arrest.TargetID]; !ok || arrested[arrest.TargetID] {
			continue
		}
		arrested[arrest.TargetID] = true

		entry, err := domain.NewGameLog(game.ID, game.Round, domain.LogTypePlayerArrested, domain.ArrestPayload{
			PlayerID:   arrest.TargetID,
			PlayerName: arrest.TargetName,
		})
		if err != nil {
			return nil, err
		}
		if err := s.logRepo.Append(ctx, entry); err != nil {
			return nil, err
		}
		result.Arrested = append(result.Arrested, domain.ActionResult{
			PlayerID:   arrest.TargetID,
			PlayerName: arrest.TargetName,
		})
	}

	summary, err := domain.NewGameLog(game.ID, game.Round, domain.LogTypeNightResult, result)
	if err != nil {
		return nil, err
	}
	if err := s.logRepo.Append(ctx, summary); err != nil {
		return nil, err
	}

	if _, err := s.phases.advance(ctx, room, game); err != nil {
		return nil, err
	}
	return result, nil
}

// currentRound resolves the room's open round. Night submissions are only
// valid while the room is ACTIVE.
func (s *NightService) currentRound(ctx context.Context, roomID uuid.UUID) (int, error) {
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
