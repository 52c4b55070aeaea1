package service

import (
	"context"
	"sort"

	"github.com/vsbaha/ENASGame-new/internal/models"
)

// In-memory repositories for service tests. They honor the same sentinel
// errors as the pg implementations.

type memUsers struct {
	seq  int64
	list []*models.User
}

func (m *memUsers) GetByTelegramID(_ context.Context, tgID int64) (*models.User, error) {
	for _, user := range m.list {
		if user.TelegramID == tgID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range m.list {
		if user.Username != nil && *user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, user := range m.list {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, user models.User) (int64, error) {
	for _, existing := range m.list {
		if existing.TelegramID == user.TelegramID {
			return 0, models.ErrConflict
		}
	}
	m.seq++
	user.ID = m.seq
	m.list = append(m.list, &user)
	return user.ID, nil
}

func (m *memUsers) UpdateRole(_ context.Context, id int64, role models.UserRole, addedBy *int64) error {
	for _, user := range m.list {
		if user.ID == id {
			user.Role = role
			if addedBy != nil {
				user.AddedBy = addedBy
			}
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memUsers) ListByRoles(_ context.Context, roles ...models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, user := range m.list {
		for _, role := range roles {
			if user.Role == role {
				out = append(out, *user)
				break
			}
		}
	}
	return out, nil
}

func (m *memUsers) Count(_ context.Context) (int, error) {
	return len(m.list), nil
}

type memGames struct {
	games   map[int64]*models.Game
	formats map[int64]*models.GameFormat
}

func (m *memGames) List(_ context.Context) ([]models.Game, error) {
	var out []models.Game
	for _, game := range m.games {
		out = append(out, *game)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memGames) Get(_ context.Context, id int64) (*models.Game, error) {
	game, ok := m.games[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *game
	return &clone, nil
}

func (m *memGames) ListFormats(_ context.Context, gameID int64) ([]models.GameFormat, error) {
	var out []models.GameFormat
	for _, format := range m.formats {
		if format.GameID == gameID {
			out = append(out, *format)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaxPlayersPerTeam < out[j].MaxPlayersPerTeam })
	return out, nil
}

func (m *memGames) GetFormat(_ context.Context, id int64) (*models.GameFormat, error) {
	format, ok := m.formats[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *format
	return &clone, nil
}

type memTournaments struct {
	seq   int64
	items map[int64]*models.Tournament
}

func (m *memTournaments) sorted(keep func(*models.Tournament) bool) []models.Tournament {
	var out []models.Tournament
	for _, t := range m.items {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memTournaments) List(_ context.Context) ([]models.Tournament, error) {
	return m.sorted(func(*models.Tournament) bool { return true }), nil
}

func (m *memTournaments) ListByStatus(_ context.Context, status models.TournamentStatus) ([]models.Tournament, error) {
	return m.sorted(func(t *models.Tournament) bool { return t.Status == status }), nil
}

func (m *memTournaments) ListByCreator(_ context.Context, createdBy int64, status *models.TournamentStatus) ([]models.Tournament, error) {
	return m.sorted(func(t *models.Tournament) bool {
		if t.CreatedBy != createdBy {
			return false
		}
		return status == nil || t.Status == *status
	}), nil
}

func (m *memTournaments) ListActiveByGame(_ context.Context, gameID int64) ([]models.Tournament, error) {
	return m.sorted(func(t *models.Tournament) bool {
		return t.GameID == gameID && t.IsActive && t.Status == models.TournamentApproved
	}), nil
}

func (m *memTournaments) Get(_ context.Context, id int64) (*models.Tournament, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *memTournaments) Create(_ context.Context, tournament models.Tournament) (int64, error) {
	m.seq++
	tournament.ID = m.seq
	m.items[tournament.ID] = &tournament
	return tournament.ID, nil
}

func (m *memTournaments) Update(_ context.Context, id int64, patch models.TournamentPatch) error {
	t, ok := m.items[id]
	if !ok {
		return models.ErrNotFound
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.LogoPath != nil {
		t.LogoPath = *patch.LogoPath
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.StartDate != nil {
		t.StartDate = *patch.StartDate
	}
	if patch.IsActive != nil {
		t.IsActive = *patch.IsActive
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	return nil
}

func (m *memTournaments) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memTournaments) CountActive(_ context.Context) (int, error) {
	return len(m.sorted(func(t *models.Tournament) bool { return t.IsActive })), nil
}

// memTeams implements both the teams and the players repositories so roster
// writes stay in one place.
type memTeams struct {
	seq         int64
	teams       map[int64]*models.Team
	players     map[int64][]models.Player
	tournaments *memTournaments
}

func (m *memTeams) Get(_ context.Context, id int64) (*models.Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *memTeams) CreateWithRoster(_ context.Context, team models.Team, players []models.Player) (int64, error) {
	m.seq++
	team.ID = m.seq
	m.teams[team.ID] = &team
	roster := make([]models.Player, len(players))
	for i, player := range players {
		player.TeamID = team.ID
		roster[i] = player
	}
	m.players[team.ID] = roster
	return team.ID, nil
}

func (m *memTeams) Update(_ context.Context, id int64, patch models.TeamPatch) error {
	t, ok := m.teams[id]
	if !ok {
		return models.ErrNotFound
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.LogoPath != nil {
		t.LogoPath = *patch.LogoPath
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	return nil
}

func (m *memTeams) Delete(_ context.Context, id int64) error {
	if _, ok := m.teams[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.teams, id)
	delete(m.players, id)
	return nil
}

func (m *memTeams) sorted(keep func(*models.Team) bool) []models.Team {
	var out []models.Team
	for _, t := range m.teams {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memTeams) ListPending(_ context.Context) ([]models.Team, error) {
	return m.sorted(func(t *models.Team) bool { return t.Status == models.TeamPending }), nil
}

func (m *memTeams) ListPendingByCreator(_ context.Context, creatorUserID int64) ([]models.Team, error) {
	return m.sorted(func(t *models.Team) bool {
		if t.Status != models.TeamPending {
			return false
		}
		tournament, ok := m.tournaments.items[t.TournamentID]
		return ok && tournament.CreatedBy == creatorUserID
	}), nil
}

func (m *memTeams) ListByCaptain(_ context.Context, captainTgID int64) ([]models.Team, error) {
	return m.sorted(func(t *models.Team) bool { return t.CaptainTgID == captainTgID }), nil
}

func (m *memTeams) Count(_ context.Context) (int, error) {
	return len(m.teams), nil
}

func (m *memTeams) ListByTeam(_ context.Context, teamID int64) ([]models.Player, error) {
	return append([]models.Player(nil), m.players[teamID]...), nil
}

func (m *memTeams) Replace(_ context.Context, teamID int64, players []models.Player) error {
	roster := make([]models.Player, len(players))
	for i, player := range players {
		player.TeamID = teamID
		roster[i] = player
	}
	m.players[teamID] = roster
	return nil
}

// memNotifier records fan-outs instead of sending.
type memNotifier struct {
	direct []notice
	super  []string
}

type notice struct {
	ids  []int64
	text string
}

func (n *memNotifier) Notify(_ context.Context, tgIDs []int64, text string) int {
	n.direct = append(n.direct, notice{ids: append([]int64(nil), tgIDs...), text: text})
	return len(tgIDs)
}

func (n *memNotifier) NotifySuperAdmins(_ context.Context, text string) int {
	n.super = append(n.super, text)
	return 1
}

type memAssets struct {
	removed []string
}

func (a *memAssets) Remove(path string) error {
	if path != "" {
		a.removed = append(a.removed, path)
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, string, int64, int64, string) {}

func (nopLogger) Error(error, string, string, int64, int64) {}

// fixture wires the services over the in-memory repositories.
type fixture struct {
	users       *memUsers
	games       *memGames
	tournaments *memTournaments
	teams       *memTeams
	notifier    *memNotifier
	assets      *memAssets

	access         AccessService
	tournamentsSvc TournamentsService
	teamsSvc       TeamsService
}

func newFixture(superAdminIDs ...int64) *fixture {
	f := &fixture{
		users: &memUsers{},
		games: &memGames{
			games:   map[int64]*models.Game{},
			formats: map[int64]*models.GameFormat{},
		},
		tournaments: &memTournaments{items: map[int64]*models.Tournament{}},
		notifier:    &memNotifier{},
		assets:      &memAssets{},
	}
	f.teams = &memTeams{
		teams:       map[int64]*models.Team{},
		players:     map[int64][]models.Player{},
		tournaments: f.tournaments,
	}
	f.access = NewAccessService(f.users, superAdminIDs)
	f.tournamentsSvc = NewTournamentsService(f.tournaments, f.games, f.users, f.access, f.notifier, f.assets, nopLogger{})
	f.teamsSvc = NewTeamsService(f.teams, f.teams, f.tournaments, f.games, f.users, f.access, f.notifier, f.assets, nopLogger{})
	return f
}

func (f *fixture) addUser(tgID int64, username string, role models.UserRole) *models.User {
	f.users.seq++
	user := &models.User{
		ID:         f.users.seq,
		TelegramID: tgID,
		FullName:   "User " + username,
		Role:       role,
	}
	if username != "" {
		name := username
		user.Username = &name
	}
	f.users.list = append(f.users.list, user)
	return user
}

func (f *fixture) addGame(id int64, name string, maxPlayers *int) *models.Game {
	game := &models.Game{ID: id, Name: name, MaxPlayers: maxPlayers}
	f.games.games[id] = game
	return game
}

func (f *fixture) addFormat(id, gameID int64, name string, cap int) *models.GameFormat {
	format := &models.GameFormat{ID: id, GameID: gameID, FormatName: name, MaxPlayersPerTeam: cap}
	f.games.formats[id] = format
	return format
}

func (f *fixture) addTournament(t models.Tournament) *models.Tournament {
	f.tournaments.seq++
	t.ID = f.tournaments.seq
	f.tournaments.items[t.ID] = &t
	return &t
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }
