package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/jwt"
	"nepalstay/internal/pkg/logger"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Email
}

func (f *fakeMailer) Send(_ context.Context, e Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeMailer) emails() []Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Email(nil), f.sent...)
}

type fakePusher struct {
	mu     sync.Mutex
	events map[int64][]any
}

func (f *fakePusher) SendToUser(userID int64, message any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.events == nil {
		f.events = map[int64][]any{}
	}
	f.events[userID] = append(f.events[userID], message)
	return true
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, logger.Discard())
	var ran atomic.Int32
	job := Job{Name: "count", Run: func(context.Context) error { ran.Add(1); return nil }}

	assert.True(t, d.Enqueue(job))
	assert.False(t, d.Enqueue(job))

	d.Start(1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	assert.Equal(t, int32(1), ran.Load())
	assert.False(t, d.Enqueue(job), "closed dispatcher rejects work")
}

func TestDispatcher_SurvivesPanickingJob(t *testing.T) {
	d := NewDispatcher(4, logger.Discard())
	d.Start(1)
	var ran atomic.Int32
	d.Enqueue(Job{Name: "boom", Run: func(context.Context) error { panic("boom") }})
	d.Enqueue(Job{Name: "after", Run: func(context.Context) error { ran.Add(1); return nil }})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	assert.Equal(t, int32(1), ran.Load())
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:          7,
		UserID:      1,
		CheckIn:     time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2030, 3, 3, 0, 0, 0, 0, time.UTC),
		Guests:      2,
		Rooms:       1,
		TotalAmount: 4000,
		User:        &domain.User{ID: 1, Name: "Sita", Email: "sita@example.np"},
		Property:    &domain.Property{ID: 3, OwnerID: 9, Name: "Lake <Inn>"},
	}
}

func TestService_BookingConfirmedSendsEmailAndPushes(t *testing.T) {
	mailer := &fakeMailer{}
	pusher := &fakePusher{}
	d := NewDispatcher(8, logger.Discard())
	d.Start(1)
	svc := NewService(mailer, pusher, d, logger.Discard())

	svc.BookingConfirmed(context.Background(), sampleBooking())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	emails := mailer.emails()
	require.Len(t, emails, 1)
	assert.Equal(t, "sita@example.np", emails[0].ToEmail)
	assert.Contains(t, emails[0].HTML, "Lake &lt;Inn&gt;")
	assert.Contains(t, emails[0].HTML, "NPR 4000.00")
	assert.Len(t, pusher.events[1], 1)
	assert.Len(t, pusher.events[9], 1)
}

func TestRecipientPrefersContactInfo(t *testing.T) {
	b := sampleBooking()
	b.ContactInfo = datatypes.NewJSONType(domain.ContactInfo{Email: "front@desk.np"})

	e := BookingCancellationEmail(b)
	assert.Equal(t, "front@desk.np", e.ToEmail)
	assert.Equal(t, "Sita", e.ToName)
	assert.Contains(t, e.HTML, "Cancelled by user")
}

func TestOwnerVerificationEmail(t *testing.T) {
	e := OwnerVerificationEmail(&domain.User{Name: "Ram", Email: "ram@example.np", VerificationStatus: domain.VerificationRejected})
	assert.Equal(t, "Property Owner Verification Rejected", e.Subject)
	assert.Contains(t, e.HTML, "contact support")
}

func TestWSHandler_PushesToConnectedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.New("secret", time.Hour)
	hub := NewHub()
	router := gin.New()
	NewWSHandler(hub, jwtService, nil, logger.Discard()).RegisterRoutes(router.Group("/api"))

	srv := httptest.NewServer(router)
	defer srv.Close()

	token, err := jwtService.GenerateToken(5, domain.RolePropertyOwner)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/notifications?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(5) }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.OnlineCount())
	assert.True(t, hub.SendToUser(5, Event{Type: TypeBookingCreated, Title: "New booking"}))

	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, TypeBookingCreated, ev.Type)
	assert.False(t, hub.SendToUser(6, ev))

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.OnlineCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestWSHandler_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewWSHandler(NewHub(), jwt.New("secret", time.Hour), nil, logger.Discard()).RegisterRoutes(router.Group("/api"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ws/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
