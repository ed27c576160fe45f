package service

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"math/rand"
	"time"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/google/uuid"
)

type RoomService struct {
	userRepo   repository.UserRepository
	roomRepo   repository.RoomRepository
	gameRepo   repository.GameRepository
	playerRepo repository.PlayerRepository
	logRepo    repository.GameLogRepository
	locks      *LockKeeper
}

func NewRoomService(
	userRepo repository.UserRepository,
	roomRepo repository.RoomRepository,
	gameRepo repository.GameRepository,
	playerRepo repository.PlayerRepository,
	logRepo repository.GameLogRepository,
	locks *LockKeeper,
) *RoomService {
	return &RoomService{
		userRepo:   userRepo,
		roomRepo:   roomRepo,
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		logRepo:    logRepo,
		locks:      locks,
	}
}

type JoinResult struct {
	RoomID       uuid.UUID `json:"roomId"`
	PlayerID     uuid.UUID `json:"playerId"`
	InviteCode   *string   `json:"inviteCode"`
	IsNewRoom    bool      `json:"isNewRoom"`
	PlayersCount int       `json:"playersCount"`
	MaxPlayers   int       `json:"maxPlayers"`
	Started      bool      `json:"started"`
}

// Join places the identity into a room. With an invite code the target room is
// looked up by code; otherwise the oldest waiting room with a free seat is
// used, or a fresh room is created. Rejoining a room the identity already sits
// in returns the existing seat. The 8th successful join starts the game.
func (s *RoomService) Join(ctx context.Context, externalID, name, inviteCode string) (*JoinResult, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if errors.Is(err, repository.ErrNotFound) {
		user = &domain.User{
			ID:          uuid.New(),
			ExternalID:  externalID,
			DisplayName: name,
			CreatedAt:   time.Now(),
		}
		err = s.userRepo.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	if inviteCode != "" {
		return s.joinByInvite(ctx, user, inviteCode)
	}
	return s.autoJoin(ctx, user)
}

func (s *RoomService) joinByInvite(ctx context.Context, user *domain.User, code string) (*JoinResult, error) {
	room, err := s.roomRepo.GetWaitingByInviteCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(room.ID)
	defer unlock()

	return s.seat(ctx, room.ID, user, false)
}

func (s *RoomService) autoJoin(ctx context.Context, user *domain.User) (*JoinResult, error) {
	room, err := s.roomRepo.OldestWaiting(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return s.createRoom(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(room.ID)
	defer unlock()

	res, err := s.seat(ctx, room.ID, user, true)
	if errors.Is(err, domain.ErrRoomFull) {
		// The room filled up between the lookup and taking the lock.
		return s.createRoom(ctx, user)
	}
	return res, err
}

// seat adds or reuses the user's player in the room. Caller holds the room
// lock. autoStart makes the 8th join trigger the game start.
func (s *RoomService) seat(ctx context.Context, roomID uuid.UUID, user *domain.User, autoStart bool) (*JoinResult, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrRoomNotFound)
	}

	if existing := room.PlayerForUser(user.ID); existing != nil {
		return &JoinResult{
			RoomID:       room.ID,
			PlayerID:     existing.ID,
			InviteCode:   room.InviteCode,
			PlayersCount: len(room.Players),
			MaxPlayers:   domain.MaxRoomPlayers,
		}, nil
	}

	if room.IsFull() {
		return nil, domain.ErrRoomFull
	}
	if room.Game == nil {
		return nil, domain.ErrGameNotFound
	}

	player := &domain.Player{
		ID:       uuid.New(),
		UserID:   user.ID,
		RoomID:   room.ID,
		GameID:   room.Game.ID,
		Role:     domain.RoleCivilian,
		IsAlive:  true,
		JoinedAt: time.Now(),
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	count := len(room.Players) + 1
	started := false
	if autoStart && count >= domain.MaxRoomPlayers {
		if err := s.start(ctx, room.ID); err != nil {
			return nil, err
		}
		started = true
	}

	return &JoinResult{
		RoomID:       room.ID,
		PlayerID:     player.ID,
		InviteCode:   room.InviteCode,
		PlayersCount: count,
		MaxPlayers:   domain.MaxRoomPlayers,
		Started:      started,
	}, nil
}

func (s *RoomService) createRoom(ctx context.Context, user *domain.User) (*JoinResult, error) {
	code := generateInviteCode()
	room := &domain.Room{
		ID:         uuid.New(),
		Name:       domain.DefaultRoomName,
		Status:     domain.RoomStatusWaiting,
		InviteCode: &code,
		OwnerID:    user.ID,
		CreatedAt:  time.Now(),
	}
	if err := s.roomRepo.Create(ctx, room); errors.Is(err, repository.ErrDuplicate) {
		code = generateInviteCode()
		room.InviteCode = &code
		if err := s.roomRepo.Create(ctx, room); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	game := &domain.Game{
		ID:        uuid.New(),
		RoomID:    room.ID,
		CreatedAt: time.Now(),
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, err
	}

	player := &domain.Player{
		ID:       uuid.New(),
		UserID:   user.ID,
		RoomID:   room.ID,
		GameID:   game.ID,
		Role:     domain.RoleCivilian,
		IsAlive:  true,
		JoinedAt: time.Now(),
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	return &JoinResult{
		RoomID:       room.ID,
		PlayerID:     player.ID,
		InviteCode:   room.InviteCode,
		IsNewRoom:    true,
		PlayersCount: 1,
		MaxPlayers:   domain.MaxRoomPlayers,
	}, nil
}

// Start deals roles and activates the room. Requires exactly 8 players.
func (s *RoomService) Start(ctx context.Context, roomID uuid.UUID) error {
	unlock := s.locks.Lock(roomID)
	defer unlock()
	return s.start(ctx, roomID)
}

// start assumes the room lock is held.
func (s *RoomService) start(ctx context.Context, roomID uuid.UUID) error {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Game == nil {
		return domain.ErrGameNotFound
	}
	if len(room.Players) != domain.MaxRoomPlayers {
		return domain.ErrInsufficientPlayers
	}

	ids := make([]uuid.UUID, len(room.Players))
	for i, p := range room.Players {
		ids[i] = p.ID
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	// Permutation slots 0..2 get the distinguished roles; the rest stay
	// civilian (the default).
	assignments := map[uuid.UUID]domain.Role{
		ids[0]: domain.RoleMafia,
		ids[1]: domain.RoleDoctor,
		ids[2]: domain.RoleSheriff,
	}
	for i := range room.Players {
		role, ok := assignments[room.Players[i].ID]
		if !ok {
			continue
		}
		p := room.Players[i]
		p.Role = role
		if err := s.playerRepo.Update(ctx, &p); err != nil {
			return err
		}
	}

	room.Status = domain.RoomStatusActive
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return err
	}

	now := time.Now()
	game := room.Game
	game.StartedAt = &now
	game.Round = 1
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return err
	}

	entry, err := domain.NewGameLog(game.ID, game.Round, domain.LogTypeGameStarted, map[string]any{})
	if err != nil {
		return err
	}
	return s.logRepo.Append(ctx, entry)
}

// Finish ends the game without a victory evaluation (host abort).
func (s *RoomService) Finish(ctx context.Context, roomID uuid.UUID) error {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Game == nil {
		return domain.ErrGameNotFound
	}

	room.Status = domain.RoomStatusFinished
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return err
	}

	now := time.Now()
	game := room.Game
	game.EndedAt = &now
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return err
	}

	entry, err := domain.NewGameLog(game.ID, game.Round, domain.LogTypeGameEnded, map[string]any{})
	if err != nil {
		return err
	}
	return s.logRepo.Append(ctx, entry)
}

// CreateInvite assigns an invite code to a waiting room, or returns the
// existing one. Regenerates once on a store-level uniqueness collision.
func (s *RoomService) CreateInvite(ctx context.Context, roomID uuid.UUID) (string, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return "", translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Status != domain.RoomStatusWaiting {
		return "", domain.ErrRoomNotWaiting
	}
	if room.InviteCode != nil {
		return *room.InviteCode, nil
	}

	code := generateInviteCode()
	err = s.roomRepo.SetInviteCode(ctx, roomID, code)
	if errors.Is(err, repository.ErrDuplicate) {
		code = generateInviteCode()
		err = s.roomRepo.SetInviteCode(ctx, roomID, code)
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// GetInviteCode returns the room's code, which may be nil.
func (s *RoomService) GetInviteCode(ctx context.Context, roomID uuid.UUID) (*string, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrRoomNotFound)
	}
	return room.InviteCode, nil
}

// GetRoomByInviteCode resolves a code to a waiting room id.
func (s *RoomService) GetRoomByInviteCode(ctx context.Context, code string) (uuid.UUID, error) {
	room, err := s.roomRepo.GetWaitingByInviteCode(ctx, code)
	if err != nil {
		return uuid.Nil, translateNotFound(err, domain.ErrRoomNotFound)
	}
	return room.ID, nil
}

// ListPlayers returns the room roster with user relations loaded.
func (s *RoomService) ListPlayers(ctx context.Context, roomID uuid.UUID) ([]*domain.Player, error) {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		return nil, translateNotFound(err, domain.ErrRoomNotFound)
	}
	return s.playerRepo.ListByRoom(ctx, roomID)
}

// PlayerFor resolves the seat a given identity holds in a room.
func (s *RoomService) PlayerFor(ctx context.Context, roomID uuid.UUID, externalID string) (*domain.Player, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrPlayerNotFound)
	}
	player, err := s.playerRepo.GetByRoomAndUser(ctx, roomID, user.ID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrPlayerNotFound)
	}
	return player, nil
}

// generateInviteCode returns 4 random bytes hex-encoded, matching the code
// format clients already parse.
func generateInviteCode() string {
	buf := make([]byte, 4)
	crand.Read(buf)
	return hex.EncodeToString(buf)
}

func translateNotFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
