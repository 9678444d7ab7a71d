package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/models"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

var fixedNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, api *mockAPI) *Store {
	t.Helper()
	store := New(api, Options{
		NotificationRefreshDelay: 10 * time.Millisecond,
		Now:                      func() time.Time { return fixedNow },
	})
	t.Cleanup(store.Close)
	return store
}

func sampleProfile() *dto.UserProfileRecord {
	return &dto.UserProfileRecord{ID: "u1", Name: "李华", StudentID: "2021001"}
}

func sampleArchives() []dto.ArchiveRecord {
	return []dto.ArchiveRecord{
		{ID: "a1", Title: "奖学金", Category: "奖惩", Status: "approved", ImageURL: "https://img/1"},
		{ID: "a2", Title: "志愿服务", Category: "实践", Status: "pending"},
	}
}

func sampleNotifications() []dto.NotificationRecord {
	return []dto.NotificationRecord{
		{ID: "n1", Type: "status", Title: "申请提交成功", CreatedAt: fixedNow.Add(-5 * time.Minute).Format(time.RFC3339)},
		{ID: "n2", Type: "system", Title: "欢迎", Read: true},
	}
}

// loggedIn returns a store that has completed a successful login against api.
func loggedIn(t *testing.T, api *mockAPI) *Store {
	t.Helper()
	api.On("HasToken", mock.Anything).Return(true)
	api.On("Login", mock.Anything, "13800000000", "abc123").Return(&dto.LoginResponse{AccessToken: "tok", UserID: "u1"}, nil).Once()
	api.On("GetProfile", mock.Anything).Return(sampleProfile(), nil).Once()
	api.On("ListArchives", mock.Anything, "").Return(sampleArchives(), nil).Once()
	api.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil).Once()

	store := newTestStore(t, api)
	require.NoError(t, store.Login(context.Background(), "13800000000", "abc123"))
	return store
}

func TestNewStartsLoading(t *testing.T) {
	store := newTestStore(t, &mockAPI{})
	snap := store.Snapshot()
	assert.True(t, snap.Loading)
	assert.False(t, snap.IsLoggedIn)
	assert.NotNil(t, snap.Items)
	assert.NotNil(t, snap.PinnedIDs)
	assert.NotNil(t, snap.Notifications)
}

func TestBootstrapWithoutToken(t *testing.T) {
	api := &mockAPI{}
	api.On("HasToken", mock.Anything).Return(false)
	store := newTestStore(t, api)

	require.NoError(t, store.Bootstrap(context.Background()))
	assert.False(t, store.Loading())
	assert.False(t, store.IsLoggedIn())
	api.AssertNotCalled(t, "GetProfile", mock.Anything)
}

func TestBootstrapCommitsAllThree(t *testing.T) {
	api := &mockAPI{}
	api.On("HasToken", mock.Anything).Return(true)
	api.On("GetProfile", mock.Anything).Return(sampleProfile(), nil)
	api.On("ListArchives", mock.Anything, "").Return(sampleArchives(), nil)
	api.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil)
	store := newTestStore(t, api)

	require.NoError(t, store.Bootstrap(context.Background()))
	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	assert.True(t, snap.IsLoggedIn)
	assert.Equal(t, "李华", snap.User.Name)
	assert.Equal(t, "", snap.User.Avatar)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "https://img/1", snap.Items[0].ImageURL)
	require.Len(t, snap.Notifications, 2)
	assert.Equal(t, "5分钟前", snap.Notifications[0].Time)
	assert.Equal(t, models.GroupToday, snap.Notifications[0].Group)
	assert.Equal(t, models.GroupOlder, snap.Notifications[1].Group)
}

func TestBootstrapFailureClearsToken(t *testing.T) {
	api := &mockAPI{}
	api.On("HasToken", mock.Anything).Return(true)
	api.On("GetProfile", mock.Anything).Return(sampleProfile(), nil).Maybe()
	api.On("ListArchives", mock.Anything, "").Return(sampleArchives(), nil).Maybe()
	api.On("ListNotifications", mock.Anything).Return(nil, appErrors.RequestFailed(401, "token expired"))
	api.On("ClearToken", mock.Anything).Return(nil).Once()
	store := newTestStore(t, api)

	err := store.Bootstrap(context.Background())
	require.Error(t, err)
	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	assert.False(t, snap.IsLoggedIn)
	assert.Empty(t, snap.Items)
	assert.Equal(t, models.UserProfile{}, snap.User)
	api.AssertCalled(t, "ClearToken", mock.Anything)
}

func TestLoginPopulatesSession(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)

	snap := store.Snapshot()
	assert.True(t, snap.IsLoggedIn)
	assert.Equal(t, "u1", snap.User.ID)
	assert.Len(t, snap.Items, 2)
	assert.Len(t, snap.Notifications, 2)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	api := &mockAPI{}
	api.On("Login", mock.Anything, "13800000000", "wrong").Return(nil, appErrors.RequestFailed(401, "手机号或密码错误"))
	store := newTestStore(t, api)
	before := store.Snapshot()

	err := store.Login(context.Background(), "13800000000", "wrong")
	require.Error(t, err)
	assert.Equal(t, "手机号或密码错误", err.Error())
	assert.Equal(t, before, store.Snapshot())
	api.AssertNotCalled(t, "GetProfile", mock.Anything)
}

func TestLoginRefreshFailureIsSwallowed(t *testing.T) {
	api := &mockAPI{}
	api.On("HasToken", mock.Anything).Return(true)
	api.On("Login", mock.Anything, "p", "pw").Return(&dto.LoginResponse{AccessToken: "tok"}, nil)
	api.On("GetProfile", mock.Anything).Return(nil, appErrors.RequestFailed(500, ""))
	api.On("ListArchives", mock.Anything, "").Return(sampleArchives(), nil)
	api.On("ListNotifications", mock.Anything).Return(nil, appErrors.RequestFailed(0, ""))
	store := newTestStore(t, api)

	require.NoError(t, store.Login(context.Background(), "p", "pw"))
	snap := store.Snapshot()
	assert.True(t, snap.IsLoggedIn)
	assert.Len(t, snap.Items, 2)
	assert.Empty(t, snap.Notifications)
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	api := &mockAPI{}
	api.On("Register", mock.Anything, dto.RegisterRequest{Phone: "13800000000", Password: "abc123", Name: "李华"}).
		Return(&dto.RegisterResponse{Message: "ok", UserID: "u9"}, nil)
	store := newTestStore(t, api)

	id, err := store.Register(context.Background(), "13800000000", "abc123", "李华")
	require.NoError(t, err)
	assert.Equal(t, "u9", id)
	assert.False(t, store.IsLoggedIn())
}

func TestLogoutIsIdempotent(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("ClearToken", mock.Anything).Return(nil)
	store.UpdatePinnedIDs([]string{"a1"})

	store.Logout(context.Background())
	first := store.Snapshot()
	store.Logout(context.Background())
	second := store.Snapshot()

	assert.Equal(t, first, second)
	assert.False(t, second.IsLoggedIn)
	assert.Empty(t, second.Items)
	assert.Empty(t, second.PinnedIDs)
	assert.Empty(t, second.Notifications)
	assert.Equal(t, models.UserProfile{}, second.User)
	api.AssertNumberOfCalls(t, "ClearToken", 2)
}

func TestDeleteAccount(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("DeleteAccount", mock.Anything).Return(appErrors.RequestFailed(500, "busy")).Once()

	before := store.Snapshot()
	require.Error(t, store.DeleteAccount(context.Background()))
	assert.Equal(t, before, store.Snapshot())

	api.On("DeleteAccount", mock.Anything).Return(nil).Once()
	require.NoError(t, store.DeleteAccount(context.Background()))
	snap := store.Snapshot()
	assert.False(t, snap.IsLoggedIn)
	assert.Empty(t, snap.Items)
}

func TestAddItemPrependsAndRefreshesInbox(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	draft := models.ArchiveDraft{Title: "竞赛一等奖", Category: "证书", Organization: "教务处", Date: "2024-05-01", ImageURL: "data:image/png;base64,AA=="}
	api.On("CreateArchive", mock.Anything, dto.ArchiveCreateRequest{
		Title: "竞赛一等奖", Category: "证书", Organization: "教务处", Date: "2024-05-01", ImageURL: "data:image/png;base64,AA==",
	}).Return(&dto.ArchiveRecord{ID: "a3", Title: "竞赛一等奖", Category: "证书", Organization: "教务处", Date: "2024-05-01", Status: "pending", ImageURL: "data:image/png;base64,AA=="}, nil)

	refreshed := make(chan struct{})
	var once sync.Once
	api.On("ListNotifications", mock.Anything).Return(append(sampleNotifications(), dto.NotificationRecord{ID: "n3", Type: "status", Title: "申请提交成功"}), nil).
		Run(func(mock.Arguments) { once.Do(func() { close(refreshed) }) })

	item, err := store.AddItem(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "a3", item.ID)
	assert.Equal(t, models.ArchiveStatusPending, item.Status)

	snap := store.Snapshot()
	require.Len(t, snap.Items, 3)
	assert.Equal(t, "a3", snap.Items[0].ID)

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("notification refresh was never scheduled")
	}
	require.Eventually(t, func() bool { return len(store.Snapshot().Notifications) == 3 }, time.Second, 5*time.Millisecond)
}

func TestAddItemFailureKeepsItems(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("CreateArchive", mock.Anything, mock.Anything).Return(nil, appErrors.RequestFailed(422, "title required"))

	_, err := store.AddItem(context.Background(), models.ArchiveDraft{Category: "证书"})
	require.Error(t, err)
	assert.Len(t, store.Snapshot().Items, 2)
	assert.Equal(t, 0, store.PendingRefreshes())
}

func TestUpdateItemTakesServerResponse(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	approved := models.ArchiveStatusApproved
	status := "approved"
	api.On("UpdateArchive", mock.Anything, "a2", dto.ArchiveUpdateRequest{Status: &status}).
		Return(&dto.ArchiveRecord{ID: "a2", Title: "志愿服务", Category: "实践", Status: "pending"}, nil)

	item, err := store.UpdateItem(context.Background(), "a2", models.ArchivePatch{Status: &approved})
	require.NoError(t, err)
	assert.Equal(t, models.ArchiveStatusPending, item.Status)

	got, ok := store.Item("a2")
	require.True(t, ok)
	assert.Equal(t, models.ArchiveStatusPending, got.Status)
	assert.Equal(t, "a2", store.Snapshot().Items[1].ID)
}

func TestDeleteItemPrunesPins(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("DeleteArchive", mock.Anything, "a1").Return(nil)
	api.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil).Maybe()
	store.UpdatePinnedIDs([]string{"a1", "a2"})

	require.NoError(t, store.DeleteItem(context.Background(), "a1"))
	snap := store.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "a2", snap.Items[0].ID)
	assert.Equal(t, []string{"a2"}, snap.PinnedIDs)
	_, ok := store.Item("a1")
	assert.False(t, ok)
}

func TestDeleteItemFailureKeepsPins(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("DeleteArchive", mock.Anything, "a1").Return(appErrors.RequestFailed(404, "not found"))
	store.UpdatePinnedIDs([]string{"a1"})

	require.Error(t, store.DeleteItem(context.Background(), "a1"))
	snap := store.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, []string{"a1"}, snap.PinnedIDs)
}

func TestUpdatePinnedIDsDedupes(t *testing.T) {
	store := newTestStore(t, &mockAPI{})
	store.UpdatePinnedIDs([]string{"b", "a", "b", "", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, store.Snapshot().PinnedIDs)

	store.UpdatePinnedIDs(nil)
	assert.Empty(t, store.Snapshot().PinnedIDs)
}

func TestMarkNotificationAsReadIsIdempotent(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("MarkNotificationRead", mock.Anything, "n1").Return(nil)

	require.NoError(t, store.MarkNotificationAsRead(context.Background(), "n1"))
	require.NoError(t, store.MarkNotificationAsRead(context.Background(), "n1"))
	assert.True(t, store.Snapshot().Notifications[0].Read)

	api.On("MarkNotificationRead", mock.Anything, "n2").Return(nil)
	require.NoError(t, store.MarkNotificationAsRead(context.Background(), "n2"))
	assert.True(t, store.Snapshot().Notifications[1].Read)
}

func TestMarkAllNotificationsAsRead(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("MarkAllNotificationsRead", mock.Anything).Return(appErrors.RequestFailed(0, "")).Once()

	require.Error(t, store.MarkAllNotificationsAsRead(context.Background()))
	assert.False(t, store.Snapshot().Notifications[0].Read)

	api.On("MarkAllNotificationsRead", mock.Anything).Return(nil).Once()
	require.NoError(t, store.MarkAllNotificationsAsRead(context.Background()))
	for _, n := range store.Snapshot().Notifications {
		assert.True(t, n.Read)
	}
}

func TestUpdateUserReplacesProfile(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	major := "计算机"
	api.On("UpdateProfile", mock.Anything, dto.UserProfileUpdateRequest{Major: &major}).
		Return(&dto.UserProfileRecord{ID: "u1", Major: "计算机"}, nil)

	user, err := store.UpdateUser(context.Background(), models.UserProfilePatch{Major: &major})
	require.NoError(t, err)
	assert.Equal(t, "计算机", user.Major)
	assert.Equal(t, "", store.Snapshot().User.Name)
}

func TestReloadItem(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("GetArchive", mock.Anything, "a2").Return(&dto.ArchiveRecord{ID: "a2", Title: "志愿服务", Status: "approved"}, nil)
	api.On("GetArchive", mock.Anything, "a9").Return(&dto.ArchiveRecord{ID: "a9", Title: "新条目", Status: "pending"}, nil)

	_, err := store.ReloadItem(context.Background(), "a2")
	require.NoError(t, err)
	got, _ := store.Item("a2")
	assert.Equal(t, models.ArchiveStatusApproved, got.Status)

	_, err = store.ReloadItem(context.Background(), "a9")
	require.NoError(t, err)
	snap := store.Snapshot()
	require.Len(t, snap.Items, 3)
	assert.Equal(t, "a9", snap.Items[0].ID)
}

func TestRefreshWithoutTokenIsNoop(t *testing.T) {
	api := &mockAPI{}
	api.On("HasToken", mock.Anything).Return(false)
	store := newTestStore(t, api)

	store.RefreshItems(context.Background())
	store.RefreshNotifications(context.Background())
	store.RefreshUser(context.Background())
	api.AssertNotCalled(t, "ListArchives", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "ListNotifications", mock.Anything)
	api.AssertNotCalled(t, "GetProfile", mock.Anything)
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("ClearToken", mock.Anything).Return(nil)

	started := make(chan struct{})
	release := make(chan struct{})
	api.On("ListArchives", mock.Anything, "").Return(sampleArchives(), nil).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Once()

	done := make(chan struct{})
	go func() {
		store.RefreshItems(context.Background())
		close(done)
	}()
	<-started
	store.Logout(context.Background())
	close(release)
	<-done

	assert.Empty(t, store.Snapshot().Items)
}

func TestLogoutCancelsDeferredRefresh(t *testing.T) {
	api := &mockAPI{}
	api.On("HasToken", mock.Anything).Return(true)
	api.On("ClearToken", mock.Anything).Return(nil)
	api.On("DeleteArchive", mock.Anything, "a1").Return(nil)
	store := New(api, Options{NotificationRefreshDelay: time.Hour})
	t.Cleanup(store.Close)

	require.NoError(t, store.DeleteItem(context.Background(), "a1"))
	assert.Equal(t, 1, store.PendingRefreshes())

	store.Logout(context.Background())
	assert.Equal(t, 0, store.PendingRefreshes())
}

func TestReadFlagSurvivesOlderRefresh(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("MarkNotificationRead", mock.Anything, "n1").Return(nil)

	started := make(chan struct{})
	release := make(chan struct{})
	api.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Once()

	done := make(chan struct{})
	go func() {
		store.RefreshNotifications(context.Background())
		close(done)
	}()
	<-started
	require.NoError(t, store.MarkNotificationAsRead(context.Background(), "n1"))
	close(release)
	<-done

	notes := store.Snapshot().Notifications
	require.Len(t, notes, 2)
	assert.Equal(t, "n1", notes[0].ID)
	assert.True(t, notes[0].Read)
}

func TestMarkAllReadSurvivesOlderRefresh(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("MarkAllNotificationsRead", mock.Anything).Return(nil)
	require.NoError(t, store.MarkAllNotificationsAsRead(context.Background()))

	stale := append(sampleNotifications(), dto.NotificationRecord{ID: "n3", Type: "status", Title: "审核通过"})
	api.On("ListNotifications", mock.Anything).Return(stale, nil).Once()
	store.RefreshNotifications(context.Background())

	notes := store.Snapshot().Notifications
	require.Len(t, notes, 3)
	assert.True(t, notes[0].Read)
	assert.True(t, notes[1].Read)
	assert.False(t, notes[2].Read, "notifications unseen at mark-all time stay unread")
}

func TestLogoutForgetsReadFlags(t *testing.T) {
	api := &mockAPI{}
	store := loggedIn(t, api)
	api.On("MarkNotificationRead", mock.Anything, "n1").Return(nil)
	api.On("ClearToken", mock.Anything).Return(nil)
	require.NoError(t, store.MarkNotificationAsRead(context.Background(), "n1"))

	store.Logout(context.Background())
	api.On("Login", mock.Anything, "13800000000", "abc123").Return(&dto.LoginResponse{AccessToken: "tok2", UserID: "u1"}, nil).Once()
	api.On("GetProfile", mock.Anything).Return(sampleProfile(), nil).Once()
	api.On("ListArchives", mock.Anything, "").Return(sampleArchives(), nil).Once()
	api.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil).Once()
	require.NoError(t, store.Login(context.Background(), "13800000000", "abc123"))

	assert.False(t, store.Snapshot().Notifications[0].Read)
}

func TestBootstrapFailureKeepsTokenFromNewerLogin(t *testing.T) {
	api := &mockAPI{}
	api.On("HasToken", mock.Anything).Return(true)
	api.On("ClearToken", mock.Anything).Return(nil).Maybe()

	started := make(chan struct{})
	release := make(chan struct{})
	api.On("GetProfile", mock.Anything).Return(nil, appErrors.RequestFailed(401, "token expired")).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Once()
	api.On("GetProfile", mock.Anything).Return(sampleProfile(), nil)
	api.On("ListArchives", mock.Anything, "").Return(sampleArchives(), nil)
	api.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil)
	api.On("Login", mock.Anything, "13800000000", "abc123").Return(&dto.LoginResponse{AccessToken: "fresh", UserID: "u1"}, nil).Once()
	store := newTestStore(t, api)

	errCh := make(chan error, 1)
	go func() { errCh <- store.Bootstrap(context.Background()) }()
	<-started
	require.NoError(t, store.Login(context.Background(), "13800000000", "abc123"))
	close(release)
	require.Error(t, <-errCh)

	api.AssertNotCalled(t, "ClearToken", mock.Anything)
	snap := store.Snapshot()
	assert.True(t, snap.IsLoggedIn)
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Items, 2)
}
