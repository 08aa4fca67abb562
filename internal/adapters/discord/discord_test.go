package discord

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/jose-valero/marin-bot/internal/app/service"
	"github.com/jose-valero/marin-bot/internal/domain"
)

// ---- harness: sesión real de discordgo contra un httptest.Server ----

type call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeAPI struct {
	mu     sync.Mutex
	calls  []call
	routes map[string]func(w http.ResponseWriter) // "METHOD /path"
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/api/v"+discordgo.APIVersion)
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: path, Query: r.URL.RawQuery, Body: string(b)})
	h := f.routes[r.Method+" "+path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if h != nil {
		h(w)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func (f *fakeAPI) find(method, path string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			return c, true
		}
	}
	return call{}, false
}

func apiError(status, code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"code":` + strconv.Itoa(code) + `,"message":"error"}`))
	}
}

func jsonBody(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) { _, _ = w.Write([]byte(body)) }
}

type rewrite struct{ target *url.URL }

func (rt rewrite) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestSession(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*discordgo.Session, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{routes: routes}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatal(err)
	}
	s.Client = &http.Client{Transport: rewrite{target: u}, Timeout: 5 * time.Second}
	s.MaxRestRetries = 0
	s.State.User = &discordgo.User{ID: "999"}
	return s, api
}

// ---- fakes de servicios ----

type fakeStamina struct {
	mu   sync.Mutex
	reqs []service.StaminaRequest
	err  error
}

func (f *fakeStamina) Remind(_ context.Context, req service.StaminaRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	return "You will be reminded when your stamina reaches 50% (50 minutes from now).", nil
}

type fakeSink struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeSink) Report(text string) {
	f.mu.Lock()
	f.msgs = append(f.msgs, text)
	f.mu.Unlock()
}

func newTestRouter(s *discordgo.Session, st *fakeStamina, sink *fakeSink) *Router {
	return NewRouter(s, Deps{
		Stamina:  st,
		Errors:   sink,
		Messages: service.DefaultMessages(),
	}, zerolog.Nop())
}

func buttonPress(presser, promptContent, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "int1",
		AppID:     "app1",
		Token:     "tok1",
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: presser}},
		Message:   &discordgo.Message{ID: "m1", ChannelID: "c1", Content: promptContent},
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID, ComponentType: discordgo.ButtonComponent},
	}}
}

// ---- tests ----

func TestClassify(t *testing.T) {
	t.Parallel()
	rest := func(code int) error {
		return &discordgo.RESTError{
			Response: &http.Response{Status: "403 Forbidden"},
			Message:  &discordgo.APIErrorMessage{Code: code},
		}
	}
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown channel", rest(10003), domain.ErrChannelNotFound},
		{"missing access", rest(50001), domain.ErrForbidden},
		{"missing permissions", rest(50013), domain.ErrForbidden},
		{"cannot dm", rest(50007), domain.ErrRecipientBlocked},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("classify = %v, want %v", got, tt.want)
			}
			if !domain.Unreachable(got) {
				t.Fatalf("expected unreachable")
			}
		})
	}

	if classify(nil) != nil {
		t.Fatal("nil must stay nil")
	}
	other := rest(40001)
	if got := classify(other); got != other || domain.Unreachable(got) {
		t.Fatalf("unexpected classification for other codes: %v", got)
	}
}

func TestParseStaminaID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"stamina_25", 25, true},
		{"stamina_50", 50, true},
		{"stamina_100", 100, true},
		{"stamina_0", 0, false},
		{"stamina_150", 0, false},
		{"stamina_x", 0, false},
		{"queue_join", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseStaminaID(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseStaminaID(%q) = %d,%v want %d,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMentionedUser(t *testing.T) {
	t.Parallel()
	if got := mentionedUser("<@123>, I see you've run out of stamina."); got != "123" {
		t.Fatalf("got %q", got)
	}
	if got := mentionedUser("<@!456> hi <@789>"); got != "456" {
		t.Fatalf("got %q", got)
	}
	if got := mentionedUser("no mention"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestUserLimiter(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newUserLimiter(2 * time.Second)
	l.now = func() time.Time { return now }

	if !l.Allow("u1") {
		t.Fatal("first click must pass")
	}
	if l.Allow("u1") {
		t.Fatal("second click inside the window must be limited")
	}
	if !l.Allow("u2") {
		t.Fatal("other users are independent")
	}
	now = now.Add(2 * time.Second)
	if !l.Allow("u1") {
		t.Fatal("click after the window must pass")
	}
}

func TestStaminaButtonsLayout(t *testing.T) {
	t.Parallel()
	comps := StaminaButtons(true)
	if len(comps) != 1 {
		t.Fatalf("rows = %d", len(comps))
	}
	row := comps[0].(discordgo.ActionsRow)
	if len(row.Components) != 3 {
		t.Fatalf("buttons = %d", len(row.Components))
	}
	for i, p := range []string{"25", "50", "100"} {
		b := row.Components[i].(discordgo.Button)
		if b.CustomID != "stamina_"+p || b.Label != "Remind at "+p+"% Stamina" || !b.Disabled {
			t.Errorf("button %d = %+v", i, b)
		}
	}
}

func TestSenderSendChannel(t *testing.T) {
	t.Parallel()
	s, api := newTestSession(t, nil)
	if err := NewSender(s).SendChannel(context.Background(), "c1", "<@1>, your raid fatigue has worn off!"); err != nil {
		t.Fatal(err)
	}
	c, ok := api.find(http.MethodPost, "/channels/c1/messages")
	if !ok {
		t.Fatal("message not sent")
	}
	if !strings.Contains(c.Body, `"parse":["users"]`) {
		t.Fatalf("reminders must only mention users: %s", c.Body)
	}
}

func TestSenderClassifiesRESTErrors(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, map[string]func(w http.ResponseWriter){
		"POST /channels/gone/messages":   apiError(http.StatusNotFound, 10003),
		"POST /channels/locked/messages": apiError(http.StatusForbidden, 50013),
	})
	snd := NewSender(s)

	if err := snd.SendChannel(context.Background(), "gone", "x"); !errors.Is(err, domain.ErrChannelNotFound) {
		t.Fatalf("gone: %v", err)
	}
	if err := snd.SendChannel(context.Background(), "locked", "x"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("locked: %v", err)
	}
}

func TestSenderSendDM(t *testing.T) {
	t.Parallel()
	s, api := newTestSession(t, map[string]func(w http.ResponseWriter){
		"POST /users/@me/channels": jsonBody(`{"id":"dm1","type":1}`),
	})
	if err := NewSender(s).SendDM(context.Background(), "u1", "hello"); err != nil {
		t.Fatal(err)
	}
	open, ok := api.find(http.MethodPost, "/users/@me/channels")
	if !ok || !strings.Contains(open.Body, `"recipient_id":"u1"`) {
		t.Fatalf("dm channel not opened: %+v", open)
	}
	if _, ok := api.find(http.MethodPost, "/channels/dm1/messages"); !ok {
		t.Fatal("dm not sent")
	}
}

func TestSenderSendDMBlocked(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, map[string]func(w http.ResponseWriter){
		"POST /users/@me/channels":    jsonBody(`{"id":"dm1","type":1}`),
		"POST /channels/dm1/messages": apiError(http.StatusForbidden, 50007),
	})
	err := NewSender(s).SendDM(context.Background(), "u1", "hello")
	if !errors.Is(err, domain.ErrRecipientBlocked) {
		t.Fatalf("err = %v", err)
	}
}

func TestAnnounceAllowsOnlyGivenRoles(t *testing.T) {
	t.Parallel()
	s, api := newTestSession(t, nil)
	err := NewSender(s).Announce(context.Background(), "c1", "<@&r3> **Tier 3 Boss Spawned!**", []string{"r3"})
	if err != nil {
		t.Fatal(err)
	}
	c, _ := api.find(http.MethodPost, "/channels/c1/messages")
	if !strings.Contains(c.Body, `"roles":["r3"]`) {
		t.Fatalf("allowed mentions = %s", c.Body)
	}
}

func TestStaminaPromptHasButtons(t *testing.T) {
	t.Parallel()
	s, api := newTestSession(t, nil)
	if err := NewSender(s).StaminaPrompt(context.Background(), "c1", "<@1>, I see you've run out of stamina."); err != nil {
		t.Fatal(err)
	}
	c, _ := api.find(http.MethodPost, "/channels/c1/messages")
	if !strings.Contains(c.Body, `"custom_id":"stamina_25"`) || !strings.Contains(c.Body, `"custom_id":"stamina_100"`) {
		t.Fatalf("buttons missing: %s", c.Body)
	}
}

func TestDirectorySearchMember(t *testing.T) {
	t.Parallel()
	s, api := newTestSession(t, map[string]func(w http.ResponseWriter){
		"GET /guilds/g1/members/search": jsonBody(`[{"user":{"id":"42","username":"bob"}}]`),
	})
	id, err := NewDirectory(s).SearchMember(context.Background(), "g1", "bob")
	if err != nil || id != "42" {
		t.Fatalf("SearchMember = %q, %v", id, err)
	}
	c, _ := api.find(http.MethodGet, "/guilds/g1/members/search")
	if !strings.Contains(c.Query, "query=bob") {
		t.Fatalf("query = %q", c.Query)
	}
}

func TestDirectorySearchMemberNoMatch(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, map[string]func(w http.ResponseWriter){
		"GET /guilds/g1/members/search": jsonBody(`[]`),
	})
	id, err := NewDirectory(s).SearchMember(context.Background(), "g1", "nobody")
	if err != nil || id != "" {
		t.Fatalf("SearchMember = %q, %v", id, err)
	}
}

func TestStaminaButtonNotYours(t *testing.T) {
	t.Parallel()
	s, api := newTestSession(t, nil)
	st := &fakeStamina{}
	r := newTestRouter(s, st, &fakeSink{})

	r.handleMessageComponent(s, buttonPress("222", "<@111>, I see you've run out of stamina.", "stamina_50"))

	if len(st.reqs) != 0 {
		t.Fatal("reminder must not be set for another user")
	}
	c, ok := api.find(http.MethodPost, "/interactions/int1/tok1/callback")
	if !ok || !strings.Contains(c.Body, "You can't interact with this button.") {
		t.Fatalf("expected rejection, got %+v", c)
	}
}

func TestStaminaButtonSetsReminder(t *testing.T) {
	t.Parallel()
	s, api := newTestSession(t, nil)
	st := &fakeStamina{}
	r := newTestRouter(s, st, &fakeSink{})

	r.handleMessageComponent(s, buttonPress("111", "<@111>, I see you've run out of stamina.", "stamina_50"))

	if len(st.reqs) != 1 {
		t.Fatalf("reqs = %d", len(st.reqs))
	}
	want := service.StaminaRequest{UserID: "111", GuildID: "g1", ChannelID: "c1", Percent: 50}
	if st.reqs[0] != want {
		t.Fatalf("req = %+v, want %+v", st.reqs[0], want)
	}
	edit, ok := api.find(http.MethodPatch, "/webhooks/app1/tok1/messages/@original")
	if !ok || !strings.Contains(edit.Body, "50%") {
		t.Fatalf("confirmation not sent: %+v", edit)
	}
	dis, ok := api.find(http.MethodPatch, "/channels/c1/messages/m1")
	if !ok || strings.Count(dis.Body, `"disabled":true`) != 3 {
		t.Fatalf("buttons not disabled: %+v", dis)
	}
}

func TestStaminaButtonExpiredInteraction(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, map[string]func(w http.ResponseWriter){
		"POST /interactions/int1/tok1/callback": apiError(http.StatusNotFound, 10062),
	})
	st := &fakeStamina{}
	sink := &fakeSink{}
	r := newTestRouter(s, st, sink)

	r.handleMessageComponent(s, buttonPress("111", "<@111>, out of stamina", "stamina_25"))

	if len(st.reqs) != 0 {
		t.Fatal("expired interaction must not set a reminder")
	}
	if len(sink.msgs) != 0 {
		t.Fatalf("expired interaction is not an error: %v", sink.msgs)
	}
}

func TestStaminaButtonFailureIsReported(t *testing.T) {
	t.Parallel()
	s, api := newTestSession(t, nil)
	st := &fakeStamina{err: errors.New("db down")}
	sink := &fakeSink{}
	r := newTestRouter(s, st, sink)

	r.handleMessageComponent(s, buttonPress("111", "<@111>, out of stamina", "stamina_100"))

	if len(sink.msgs) != 1 || !strings.Contains(sink.msgs[0], "db down") {
		t.Fatalf("sink = %v", sink.msgs)
	}
	edit, _ := api.find(http.MethodPatch, "/webhooks/app1/tok1/messages/@original")
	if !strings.Contains(edit.Body, "Sorry, there was an error setting your reminder.") {
		t.Fatalf("edit = %s", edit.Body)
	}
	if _, ok := api.find(http.MethodPatch, "/channels/c1/messages/m1"); ok {
		t.Fatal("buttons must stay enabled after a failure")
	}
}

func TestSettingsEmbed(t *testing.T) {
	t.Parallel()
	e := settingsEmbed(domain.GuildSettings{GuildID: "g1", Tier3RoleID: "r3"})
	want := "**Tier 3 Role:** <@&r3>\n**Tier 2 Role:** ❌ Not set\n**Tier 1 Role:** ❌ Not set"
	if e.Description != want {
		t.Fatalf("description = %q", e.Description)
	}
	if e.Color != colorSettings || e.Footer == nil || e.Footer.Text != "Marin Helper Settings" {
		t.Fatalf("embed = %+v", e)
	}
}

func TestNotificationsEmbed(t *testing.T) {
	t.Parallel()
	us := domain.DefaultUserSettings("u1")
	us.Raid = false
	e := notificationsEmbed(us)
	if len(e.Fields) != 6 {
		t.Fatalf("fields = %d", len(e.Fields))
	}
	got := map[string]string{}
	for _, f := range e.Fields {
		got[f.Name] = f.Value
	}
	if got["Raid Fatigue"] != "Disabled" || got["Expedition"] != "Enabled" || got["DM Notifications"] != "Disabled" {
		t.Fatalf("fields = %v", got)
	}
}

func TestIsNewGuild(t *testing.T) {
	t.Parallel()
	r := NewRouter(nil, Deps{}, zerolog.Nop())
	r.handleReady(nil, &discordgo.Ready{User: &discordgo.User{Username: "marin"}, Guilds: []*discordgo.Guild{{ID: "g1"}}})

	if r.isNewGuild("g1") {
		t.Fatal("guild from READY is not a join")
	}
	if !r.isNewGuild("g1") {
		t.Fatal("a later GuildCreate for the same guild is a re-join")
	}
	if !r.isNewGuild("g2") {
		t.Fatal("unknown guild is a join")
	}
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()
	d := 26*time.Hour + 3*time.Minute + 4*time.Second
	if got := formatUptime(d); got != "1d 2h 3m 4s" {
		t.Fatalf("got %q", got)
	}
}

func TestPresenceText(t *testing.T) {
	t.Parallel()
	if got := PresenceText(12); got != "Marin bot in 12 servers" {
		t.Fatalf("got %q", got)
	}
}
