package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/campusshare/campusshare/internal/app/auth"
	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/app/models/dto"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
	"github.com/campusshare/campusshare/internal/pkg/binstore"
)

type mockResourceStore struct {
	mu        sync.Mutex
	docs      map[string]bson.M
	insertErr error
	deleteErr map[string]error
	inserted  []*models.Resource
	deleted   []string
}

func newMockResourceStore(docs ...bson.M) *mockResourceStore {
	m := &mockResourceStore{docs: map[string]bson.M{}, deleteErr: map[string]error{}}
	for _, doc := range docs {
		m.docs[doc["_id"].(string)] = doc
	}
	return m
}

func (m *mockResourceStore) Insert(ctx context.Context, r *models.Resource) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return "", m.insertErr
	}
	r.ID = "generated-id"
	m.inserted = append(m.inserted, r)
	return r.ID, nil
}

func (m *mockResourceStore) GetRaw(ctx context.Context, id string) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return doc, nil
}

func (m *mockResourceStore) ListRaw(ctx context.Context) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bson.M, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	return out, nil
}

func (m *mockResourceStore) ListRawByOwner(ctx context.Context, uid string) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []bson.M
	for _, doc := range m.docs {
		if doc["uploadedBy"] == uid || doc["teacherId"] == uid {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *mockResourceStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	if _, ok := m.docs[id]; !ok {
		return apperrors.ErrResourceNotFound
	}
	delete(m.docs, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockResourceStore) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.docs)), nil
}

type mockBinStore struct {
	mu           sync.Mutex
	uploadCalls  int
	deleteCalls  []string
	uploadErr    error
	deleteErr    map[string]error
	uploadResult binstore.UploadResult
}

func newMockBinStore() *mockBinStore {
	return &mockBinStore{
		deleteErr:    map[string]error{},
		uploadResult: binstore.UploadResult{URL: "https://cdn.example/file", DeleteToken: "tok-1"},
	}
}

func (m *mockBinStore) Upload(ctx context.Context, fileName, contentType string, r io.Reader, size int64) (*binstore.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadCalls++
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	result := m.uploadResult
	return &result, nil
}

func (m *mockBinStore) DeleteByToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, token)
	return m.deleteErr[token]
}

type fixedRoles struct {
	roles map[string]models.Role
}

func (f fixedRoles) GetRole(ctx context.Context, uid string) (models.Role, error) {
	role, ok := f.roles[uid]
	if !ok {
		return "", apperrors.ErrUserNotFound
	}
	return role, nil
}

type staticUserCount int64

func (s staticUserCount) Count(ctx context.Context) (int64, error) { return int64(s), nil }

func newTestResourceService(store *mockResourceStore, bin *mockBinStore) *ResourceService {
	authz := auth.NewAuthorizationService(fixedRoles{roles: map[string]models.Role{
		"teacher-1": models.RoleTeacher,
		"teacher-2": models.RoleTeacher,
		"admin-1":   models.RoleAdmin,
		"student-1": models.RoleStudent,
	}})
	return NewResourceService(store, staticUserCount(2), bin, authz)
}

func uploadRequest() dto.CreateResourceRequest {
	return dto.CreateResourceRequest{
		Semester:     3,
		Subject:      "Operating Systems",
		SubjectCode:  "CS302",
		AcademicYear: "2024-25",
		Term:         "odd",
	}
}

func teacherActor(uid string) auth.Actor {
	return auth.Actor{UID: uid, Username: "Prof", Role: models.RoleTeacher}
}

func TestUpload_Success(t *testing.T) {
	store := newMockResourceStore()
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	resource, err := svc.Upload(context.Background(), teacherActor("teacher-1"), uploadRequest(),
		"notes.pdf", "application/pdf", strings.NewReader("payload"), 7)

	require.NoError(t, err)
	assert.Equal(t, 1, bin.uploadCalls)
	require.Len(t, store.inserted, 1)

	assert.Equal(t, "https://cdn.example/file", resource.FileURL)
	assert.Equal(t, "tok-1", resource.DeleteToken)
	assert.Equal(t, "teacher-1", resource.UploadedBy)
	assert.Equal(t, models.RoleTeacher, resource.Role)
	assert.Equal(t, 3, resource.Semester)
	assert.False(t, resource.UploadedAt.IsZero())
}

func TestUpload_RejectedFileTypeSendsNothing(t *testing.T) {
	store := newMockResourceStore()
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	_, err := svc.Upload(context.Background(), teacherActor("teacher-1"), uploadRequest(),
		"archive.zip", "application/zip", strings.NewReader("payload"), 7)

	assert.ErrorIs(t, err, apperrors.ErrFileTypeNotAllowed)
	assert.Zero(t, bin.uploadCalls, "no bytes should reach the binary store")
	assert.Empty(t, store.inserted, "no record should be written")
}

func TestUpload_MissingFile(t *testing.T) {
	store := newMockResourceStore()
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	_, err := svc.Upload(context.Background(), teacherActor("teacher-1"), uploadRequest(),
		"", "application/pdf", nil, 0)

	assert.ErrorIs(t, err, apperrors.ErrFileMissing)
	assert.Zero(t, bin.uploadCalls)
}

func TestUpload_StudentDenied(t *testing.T) {
	store := newMockResourceStore()
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	actor := auth.Actor{UID: "student-1", Role: models.RoleStudent}
	_, err := svc.Upload(context.Background(), actor, uploadRequest(),
		"notes.pdf", "application/pdf", strings.NewReader("x"), 1)

	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Zero(t, bin.uploadCalls)
}

func TestUpload_BinaryFailureWritesNoMetadata(t *testing.T) {
	store := newMockResourceStore()
	bin := newMockBinStore()
	bin.uploadErr = errors.New("host unreachable")
	svc := newTestResourceService(store, bin)

	_, err := svc.Upload(context.Background(), teacherActor("teacher-1"), uploadRequest(),
		"notes.pdf", "application/pdf", strings.NewReader("x"), 1)

	assert.ErrorIs(t, err, apperrors.ErrUploadFailed)
	assert.Empty(t, store.inserted)
}

func TestUpload_MetadataFailureLeavesOrphan(t *testing.T) {
	store := newMockResourceStore()
	store.insertErr = errors.New("write refused")
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	_, err := svc.Upload(context.Background(), teacherActor("teacher-1"), uploadRequest(),
		"notes.pdf", "application/pdf", strings.NewReader("x"), 1)

	assert.ErrorIs(t, err, apperrors.ErrMetadataWriteFailed)
	assert.Equal(t, 1, bin.uploadCalls)
	assert.Empty(t, bin.deleteCalls, "the orphaned binary is not cleaned up")
}

func resourceDoc(id, owner, token string) bson.M {
	return bson.M{
		"_id":         id,
		"fileName":    id + ".pdf",
		"fileUrl":     "https://cdn.example/" + id,
		"fileType":    "application/pdf",
		"uploadedBy":  owner,
		"deleteToken": token,
		"uploadedAt":  time.Now().UnixMilli(),
	}
}

func TestDelete_OwnerRemovesRecordAndBinary(t *testing.T) {
	store := newMockResourceStore(resourceDoc("r1", "teacher-1", "tok-r1"))
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	err := svc.Delete(context.Background(), teacherActor("teacher-1"), "r1")

	require.NoError(t, err)
	assert.Equal(t, []string{"tok-r1"}, bin.deleteCalls)
	assert.Equal(t, []string{"r1"}, store.deleted)
}

func TestDelete_FailedBinaryDeleteStillRemovesMetadata(t *testing.T) {
	store := newMockResourceStore(resourceDoc("r1", "teacher-1", "tok-r1"))
	bin := newMockBinStore()
	bin.deleteErr["tok-r1"] = errors.New("token expired")
	svc := newTestResourceService(store, bin)

	err := svc.Delete(context.Background(), teacherActor("teacher-1"), "r1")

	require.NoError(t, err, "binary delete failure must not block metadata removal")
	assert.Equal(t, []string{"r1"}, store.deleted)
}

func TestDelete_RecordWithoutTokenSkipsBinaryCall(t *testing.T) {
	store := newMockResourceStore(resourceDoc("r1", "teacher-1", ""))
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	err := svc.Delete(context.Background(), teacherActor("teacher-1"), "r1")

	require.NoError(t, err)
	assert.Empty(t, bin.deleteCalls)
	assert.Equal(t, []string{"r1"}, store.deleted)
}

func TestDelete_ForeignTeacherDenied(t *testing.T) {
	store := newMockResourceStore(resourceDoc("r1", "teacher-1", "tok-r1"))
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	err := svc.Delete(context.Background(), teacherActor("teacher-2"), "r1")

	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, bin.deleteCalls)
	assert.Empty(t, store.deleted)
}

func TestDelete_AdminDeletesAnything(t *testing.T) {
	store := newMockResourceStore(resourceDoc("r1", "teacher-1", "tok-r1"))
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	actor := auth.Actor{UID: "admin-1", Username: "root", Role: models.RoleAdmin}
	err := svc.Delete(context.Background(), actor, "r1")

	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, store.deleted)
}

func TestDelete_NotFound(t *testing.T) {
	store := newMockResourceStore()
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	err := svc.Delete(context.Background(), teacherActor("teacher-1"), "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestDeleteAllByOwner_BestEffortCascade(t *testing.T) {
	store := newMockResourceStore(
		resourceDoc("r1", "teacher-1", "tok-1"),
		resourceDoc("r2", "teacher-1", "tok-2"),
		resourceDoc("r3", "teacher-1", "tok-3"),
		resourceDoc("other", "teacher-2", "tok-x"),
	)
	bin := newMockBinStore()
	bin.deleteErr["tok-2"] = errors.New("already gone")
	svc := newTestResourceService(store, bin)

	deleted, err := svc.DeleteAllByOwner(context.Background(), "teacher-1")

	require.NoError(t, err)
	assert.Equal(t, 3, deleted, "every owned record is removed even when a binary delete fails")
	assert.Len(t, bin.deleteCalls, 3)
	assert.ElementsMatch(t, []string{"r1", "r2", "r3"}, store.deleted)

	_, ok := store.docs["other"]
	assert.True(t, ok, "other owners' records stay untouched")
}

func TestDeleteAllByOwner_NoResources(t *testing.T) {
	store := newMockResourceStore()
	bin := newMockBinStore()
	svc := newTestResourceService(store, bin)

	deleted, err := svc.DeleteAllByOwner(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestList_FlatPagination(t *testing.T) {
	store := newMockResourceStore(
		resourceDoc("r1", "teacher-1", ""),
		resourceDoc("r2", "teacher-1", ""),
		resourceDoc("r3", "teacher-2", ""),
	)
	svc := newTestResourceService(store, newMockBinStore())

	flat, grouped, err := svc.List(context.Background(), dto.ResourceFilterRequest{Page: 1, PageSize: 2})

	require.NoError(t, err)
	assert.Nil(t, grouped)
	require.NotNil(t, flat)
	assert.Len(t, flat.Resources, 2)
	assert.Equal(t, int64(3), flat.PaginationInfo.TotalItems)
	assert.Equal(t, 2, flat.PaginationInfo.TotalPages)
}

func TestList_Grouped(t *testing.T) {
	store := newMockResourceStore(
		resourceDoc("r1", "teacher-1", ""),
		resourceDoc("r2", "teacher-1", ""),
	)
	svc := newTestResourceService(store, newMockBinStore())

	flat, grouped, err := svc.List(context.Background(), dto.ResourceFilterRequest{GroupBy: "semester"})

	require.NoError(t, err)
	assert.Nil(t, flat)
	require.NotNil(t, grouped)
	assert.Equal(t, 2, grouped.TotalItems)
}

func TestStats(t *testing.T) {
	doc1 := resourceDoc("r1", "teacher-1", "")
	doc1["semester"] = 3
	doc1["uploaderName"] = "Prof A"
	doc1["downloads"] = int64(10)
	doc2 := resourceDoc("r2", "teacher-2", "")
	doc2["semester"] = 3
	doc2["uploaderName"] = "Prof B"
	doc2["downloads"] = int64(2)

	store := newMockResourceStore(doc1, doc2)
	svc := newTestResourceService(store, newMockBinStore())

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalResources)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, 2, stats.UploadsPerSemester[3])
	require.NotEmpty(t, stats.UploadsPerUploader)
	assert.Equal(t, "Prof A", stats.UploadsPerUploader[0].Uploader)
	require.NotEmpty(t, stats.TopDownloads)
	assert.Equal(t, int64(10), stats.TopDownloads[0].Downloads)
}

func TestFileTypeAllowed(t *testing.T) {
	allowed := []string{
		"application/pdf",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"image/png",
		"image/jpeg",
		"image/gif",
	}
	for _, ct := range allowed {
		assert.True(t, FileTypeAllowed(ct), ct)
	}

	rejected := []string{"application/zip", "video/mp4", "text/html", "image/svg+xml", ""}
	for _, ct := range rejected {
		assert.False(t, FileTypeAllowed(ct), ct)
	}
}
