package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"kbrain/internal/model"
	"kbrain/internal/repository"
	repoMocks "kbrain/internal/repository/mocks"
	storeMocks "kbrain/internal/storage/mocks"
)

const helloSHA256 = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func activeScope() *model.Scope {
	return &model.Scope{
		ID:                "scope-1",
		Name:              "reports",
		AllowedExtensions: []string{"txt", "pdf"},
		StorageBackend:    model.BackendLocal,
		IsActive:          true,
	}
}

type uploadMocks struct {
	store  *storeMocks.MockFileStorage
	docs   *repoMocks.MockDocumentRepository
	scopes *repoMocks.MockScopeRepository
	tags   *repoMocks.MockTagRepository
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		scopeID     string
		in          UploadInput
		maxFileSize int64
		setupMocks  func(m uploadMocks)
		wantErr     error
		wantErrMsg  string
		checkErr    func(t *testing.T, err error)
		checkDoc    func(t *testing.T, doc *model.Document)
	}{
		{
			name:        "happy path",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "Report.TXT", Content: []byte("hello world"), MimeType: "text/plain"},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
				m.docs.On("FindByScopeAndChecksum", ctx, "scope-1", helloSHA256).
					Return(nil, sql.ErrNoRows)
				m.store.On("Save", ctx, mock.MatchedBy(func(key string) bool {
					return regexp.MustCompile(`^scopes/reports/\d{4}/\d{2}/\d{4}-\d{2}-\d{2}_[0-9a-f]{12}\.txt$`).MatchString(key)
				}), []byte("hello world"), true).Return(true, nil)
				m.docs.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.ScopeID == "scope-1" &&
						doc.OriginalName == "Report.TXT" &&
						doc.FileExtension == "txt" &&
						doc.FileSize == 11 &&
						doc.ChecksumSHA256 == helloSHA256 &&
						doc.Status == model.StatusAdded
				}), mock.Anything).Return(&model.Document{ID: "doc-1", Status: model.StatusAdded}, nil)
			},
			checkDoc: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, "doc-1", doc.ID)
				assert.Equal(t, model.StatusAdded, doc.Status)
			},
		},
		{
			name:        "happy path with tags",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "a.pdf", Content: []byte("hello world"), TagIDs: []string{"t1", "t2"}},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
				m.docs.On("FindByScopeAndChecksum", ctx, "scope-1", helloSHA256).
					Return(nil, sql.ErrNoRows)
				m.tags.On("ResolveByIDs", ctx, "scope-1", []string{"t1", "t2"}).
					Return([]model.Tag{{ID: "t1"}, {ID: "t2"}}, nil)
				m.store.On("Save", ctx, mock.Anything, []byte("hello world"), true).Return(true, nil)
				m.docs.On("Create", ctx, mock.Anything, []string{"t1", "t2"}).
					Return(&model.Document{ID: "doc-1", Tags: []model.Tag{{ID: "t1"}, {ID: "t2"}}}, nil)
			},
			checkDoc: func(t *testing.T, doc *model.Document) {
				assert.Len(t, doc.Tags, 2)
			},
		},
		{
			name:        "scope not found",
			scopeID:     "missing",
			in:          UploadInput{Filename: "a.txt", Content: []byte("x")},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			checkErr: func(t *testing.T, err error) {
				var nf *NotFoundError
				assert.ErrorAs(t, err, &nf)
				assert.Equal(t, "scope", nf.Resource)
			},
		},
		{
			name:        "inactive scope rejected",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "a.txt", Content: []byte("x")},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				scope := activeScope()
				scope.IsActive = false
				m.scopes.On("FindByID", ctx, "scope-1").Return(scope, nil)
			},
			checkErr: func(t *testing.T, err error) {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Message, "not active")
			},
		},
		{
			name:        "disallowed extension rejected before any checksum work",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "image.png", Content: []byte("x")},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
			},
			checkErr: func(t *testing.T, err error) {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Message, `"png"`)
				assert.Contains(t, ve.Message, "txt, pdf")
			},
		},
		{
			name:        "payload at the limit succeeds",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "a.txt", Content: []byte("hello world")},
			maxFileSize: 11,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
				m.docs.On("FindByScopeAndChecksum", ctx, "scope-1", helloSHA256).
					Return(nil, sql.ErrNoRows)
				m.store.On("Save", ctx, mock.Anything, mock.Anything, true).Return(true, nil)
				m.docs.On("Create", ctx, mock.Anything, mock.Anything).
					Return(&model.Document{ID: "doc-1"}, nil)
			},
		},
		{
			name:        "one byte over the limit rejected",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "a.txt", Content: []byte("hello world!")},
			maxFileSize: 11,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
			},
			checkErr: func(t *testing.T, err error) {
				var tl *TooLargeError
				assert.ErrorAs(t, err, &tl)
				assert.Equal(t, int64(12), tl.Size)
				assert.Equal(t, int64(11), tl.Max)
			},
		},
		{
			name:        "duplicate content conflicts with existing document",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "copy.txt", Content: []byte("hello world")},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
				m.docs.On("FindByScopeAndChecksum", ctx, "scope-1", helloSHA256).
					Return(&model.Document{ID: "earlier-doc"}, nil)
			},
			checkErr: func(t *testing.T, err error) {
				var ce *ConflictError
				assert.ErrorAs(t, err, &ce)
				assert.Equal(t, "earlier-doc", ce.ExistingID)
			},
		},
		{
			name:        "unknown tag rejected before any storage write",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "a.txt", Content: []byte("hello world"), TagIDs: []string{"t1", "ghost"}},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
				m.docs.On("FindByScopeAndChecksum", ctx, "scope-1", helloSHA256).
					Return(nil, sql.ErrNoRows)
				m.tags.On("ResolveByIDs", ctx, "scope-1", []string{"t1", "ghost"}).
					Return([]model.Tag{{ID: "t1"}}, nil)
			},
			checkErr: func(t *testing.T, err error) {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Message, "ghost")
				assert.NotContains(t, ve.Message, "t1,")
			},
		},
		{
			name:        "storage failure surfaces as storage error",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "a.txt", Content: []byte("hello world")},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
				m.docs.On("FindByScopeAndChecksum", ctx, "scope-1", helloSHA256).
					Return(nil, sql.ErrNoRows)
				m.store.On("Save", ctx, mock.Anything, mock.Anything, true).
					Return(false, errors.New("disk fail"))
			},
			checkErr: func(t *testing.T, err error) {
				var se *StorageError
				assert.ErrorAs(t, err, &se)
				assert.Equal(t, "save", se.Op)
			},
		},
		{
			name:        "metadata commit failure rolls back the written bytes",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "a.txt", Content: []byte("hello world")},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
				m.docs.On("FindByScopeAndChecksum", ctx, "scope-1", helloSHA256).
					Return(nil, sql.ErrNoRows)
				m.store.On("Save", ctx, mock.Anything, mock.Anything, true).Return(true, nil)
				m.docs.On("Create", ctx, mock.Anything, mock.Anything).
					Return(nil, errors.New("db fail"))
				m.store.On("Delete", ctx, mock.Anything).Return(true, nil)
			},
			wantErrMsg: "metadata commit failed: db fail",
		},
		{
			name:        "losing a dedup race still reads as a conflict",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "a.txt", Content: []byte("hello world")},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
				m.docs.On("FindByScopeAndChecksum", ctx, "scope-1", helloSHA256).
					Return(nil, sql.ErrNoRows)
				m.store.On("Save", ctx, mock.Anything, mock.Anything, true).Return(true, nil)
				m.docs.On("Create", ctx, mock.Anything, mock.Anything).
					Return(nil, &pgconn.PgError{Code: "23505", ConstraintName: "uq_documents_scope_checksum"})
				m.store.On("Delete", ctx, mock.Anything).Return(true, nil)
			},
			checkErr: func(t *testing.T, err error) {
				var ce *ConflictError
				assert.ErrorAs(t, err, &ce)
			},
		},
		{
			name:        "rollback failure is reported alongside the commit failure",
			scopeID:     "scope-1",
			in:          UploadInput{Filename: "a.txt", Content: []byte("hello world")},
			maxFileSize: 1 << 20,
			setupMocks: func(m uploadMocks) {
				m.scopes.On("FindByID", ctx, "scope-1").Return(activeScope(), nil)
				m.docs.On("FindByScopeAndChecksum", ctx, "scope-1", helloSHA256).
					Return(nil, sql.ErrNoRows)
				m.store.On("Save", ctx, mock.Anything, mock.Anything, true).Return(true, nil)
				m.docs.On("Create", ctx, mock.Anything, mock.Anything).
					Return(nil, errors.New("db fail"))
				m.store.On("Delete", ctx, mock.Anything).Return(false, errors.New("delete fail"))
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := uploadMocks{
				store:  new(storeMocks.MockFileStorage),
				docs:   new(repoMocks.MockDocumentRepository),
				scopes: new(repoMocks.MockScopeRepository),
				tags:   new(repoMocks.MockTagRepository),
			}
			svc := NewDocumentService(m.store, model.BackendLocal, m.docs, m.scopes, m.tags, tt.maxFileSize)

			tt.setupMocks(m)

			doc, err := svc.Upload(ctx, tt.scopeID, tt.in)

			switch {
			case tt.checkErr != nil:
				assert.Error(t, err)
				tt.checkErr(t, err)
				assert.Nil(t, doc)
			case tt.wantErrMsg != "":
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Nil(t, doc)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
				assert.NotNil(t, doc)
				if tt.checkDoc != nil {
					tt.checkDoc(t, doc)
				}
			}

			m.store.AssertExpectations(t)
			m.docs.AssertExpectations(t)
			m.scopes.AssertExpectations(t)
			m.tags.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mDocs *repoMocks.MockDocumentRepository)
		wantErr    error
		wantNF     bool
	}{
		{
			name: "happy path",
			id:   "doc-1",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantNF: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mDocs := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(nil, model.BackendLocal, mDocs, nil, nil, 1<<20)

			tt.setupMocks(mDocs)

			doc, err := svc.Get(ctx, tt.id)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			case tt.wantNF:
				var nf *NotFoundError
				assert.ErrorAs(t, err, &nf)
				assert.Nil(t, doc)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.id, doc.ID)
			}
			mDocs.AssertExpectations(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		scopeID    string
		filter     repository.DocumentFilter
		limit      int
		offset     int
		setupMocks func(mDocs *repoMocks.MockDocumentRepository)
		wantErr    bool
		checkRes   func(t *testing.T, res *DocumentListResult)
	}{
		{
			name:    "happy path",
			scopeID: "scope-1",
			limit:   10,
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("ListByScope", ctx, "scope-1", repository.DocumentFilter{}, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Document]{
						Items: []model.Document{{ID: "1"}, {ID: "2"}},
						Total: 2,
					}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.Len(t, res.Items, 2)
				assert.Equal(t, 2, res.Total)
			},
		},
		{
			name:    "pagination boundary - zero limit uses default",
			scopeID: "scope-1",
			limit:   0,
			offset:  -1,
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("ListByScope", ctx, "scope-1", repository.DocumentFilter{}, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{}, Total: 0}, nil)
			},
		},
		{
			name:       "unknown status filter rejected",
			scopeID:    "scope-1",
			filter:     repository.DocumentFilter{Status: "sleeping"},
			limit:      10,
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {},
			wantErr:    true,
		},
		{
			name:       "empty scope id rejected",
			scopeID:    "",
			limit:      10,
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mDocs := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(nil, model.BackendLocal, mDocs, nil, nil, 1<<20)

			tt.setupMocks(mDocs)

			res, err := svc.List(ctx, tt.scopeID, tt.filter, tt.limit, tt.offset)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mDocs.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Download(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mStore *storeMocks.MockFileStorage, mDocs *repoMocks.MockDocumentRepository)
		checkErr   func(t *testing.T, err error)
		want       []byte
	}{
		{
			name: "happy path",
			setupMocks: func(mStore *storeMocks.MockFileStorage, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "doc-1").
					Return(&model.Document{ID: "doc-1", StoragePath: "scopes/r/x.txt"}, nil)
				mStore.On("Read", ctx, "scopes/r/x.txt").Return([]byte("payload"), true, nil)
			},
			want: []byte("payload"),
		},
		{
			name: "bytes missing from backend",
			setupMocks: func(mStore *storeMocks.MockFileStorage, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "doc-1").
					Return(&model.Document{ID: "doc-1", StoragePath: "scopes/r/x.txt"}, nil)
				mStore.On("Read", ctx, "scopes/r/x.txt").Return([]byte(nil), false, nil)
			},
			checkErr: func(t *testing.T, err error) {
				var nf *NotFoundError
				assert.ErrorAs(t, err, &nf)
			},
		},
		{
			name: "read fault surfaces as storage error",
			setupMocks: func(mStore *storeMocks.MockFileStorage, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "doc-1").
					Return(&model.Document{ID: "doc-1", StoragePath: "scopes/r/x.txt"}, nil)
				mStore.On("Read", ctx, "scopes/r/x.txt").
					Return([]byte(nil), false, errors.New("io fail"))
			},
			checkErr: func(t *testing.T, err error) {
				var se *StorageError
				assert.ErrorAs(t, err, &se)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockFileStorage)
			mDocs := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mStore, model.BackendLocal, mDocs, nil, nil, 1<<20)

			tt.setupMocks(mStore, mDocs)

			doc, content, err := svc.Download(ctx, "doc-1")

			if tt.checkErr != nil {
				assert.Error(t, err)
				tt.checkErr(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
				assert.Equal(t, tt.want, content)
			}
			mStore.AssertExpectations(t)
			mDocs.AssertExpectations(t)
		})
	}
}

func TestDocumentService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("processing stamps processing_started", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, model.BackendLocal, mDocs, nil, nil, 1<<20)

		mDocs.On("FindByID", ctx, "doc-1").
			Return(&model.Document{ID: "doc-1", Status: model.StatusAdded}, nil)
		mDocs.On("Update", ctx, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.Status == model.StatusProcessing && doc.ProcessingStarted != nil && doc.ProcessedAt == nil
		})).Return(&model.Document{ID: "doc-1", Status: model.StatusProcessing}, nil)

		doc, err := svc.UpdateStatus(ctx, "doc-1", model.StatusProcessing, "")
		assert.NoError(t, err)
		assert.Equal(t, model.StatusProcessing, doc.Status)
		mDocs.AssertExpectations(t)
	})

	t.Run("failed stamps processed_at, records the error and bumps retries", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, model.BackendLocal, mDocs, nil, nil, 1<<20)

		started := time.Now().UTC()
		mDocs.On("FindByID", ctx, "doc-1").
			Return(&model.Document{ID: "doc-1", Status: model.StatusProcessing, ProcessingStarted: &started, RetryCount: 1}, nil)
		mDocs.On("Update", ctx, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.Status == model.StatusFailed &&
				doc.ProcessedAt != nil &&
				doc.ErrorMessage == "ocr crashed" &&
				doc.RetryCount == 2
		})).Return(&model.Document{ID: "doc-1", Status: model.StatusFailed}, nil)

		_, err := svc.UpdateStatus(ctx, "doc-1", model.StatusFailed, "ocr crashed")
		assert.NoError(t, err)
		mDocs.AssertExpectations(t)
	})

	t.Run("processed clears a stale error message", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, model.BackendLocal, mDocs, nil, nil, 1<<20)

		mDocs.On("FindByID", ctx, "doc-1").
			Return(&model.Document{ID: "doc-1", Status: model.StatusFailed, ErrorMessage: "old"}, nil)
		mDocs.On("Update", ctx, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.Status == model.StatusProcessed && doc.ErrorMessage == ""
		})).Return(&model.Document{ID: "doc-1", Status: model.StatusProcessed}, nil)

		_, err := svc.UpdateStatus(ctx, "doc-1", model.StatusProcessed, "")
		assert.NoError(t, err)
		mDocs.AssertExpectations(t)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc := NewDocumentService(nil, model.BackendLocal, nil, nil, nil, 1<<20)

		_, err := svc.UpdateStatus(ctx, "doc-1", "archived", "")
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

func TestDocumentService_UpdateMetadata(t *testing.T) {
	ctx := context.Background()

	mDocs := new(repoMocks.MockDocumentRepository)
	svc := NewDocumentService(nil, model.BackendLocal, mDocs, nil, nil, 1<<20)

	mDocs.On("FindByID", ctx, "doc-1").
		Return(&model.Document{ID: "doc-1", Metadata: map[string]any{"source": "scan", "pages": 3}}, nil)
	mDocs.On("Update", ctx, mock.MatchedBy(func(doc *model.Document) bool {
		return doc.Metadata["source"] == "scan" &&
			doc.Metadata["pages"] == 12 &&
			doc.Metadata["lang"] == "en"
	})).Return(&model.Document{ID: "doc-1"}, nil)

	_, err := svc.UpdateMetadata(ctx, "doc-1", map[string]any{"pages": 12, "lang": "en"})
	assert.NoError(t, err)
	mDocs.AssertExpectations(t)
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		deleteStorage bool
		setupMocks    func(mStore *storeMocks.MockFileStorage, mDocs *repoMocks.MockDocumentRepository)
		wantErr       bool
	}{
		{
			name:          "removes bytes then record",
			deleteStorage: true,
			setupMocks: func(mStore *storeMocks.MockFileStorage, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "doc-1").
					Return(&model.Document{ID: "doc-1", StoragePath: "scopes/r/x.txt"}, nil)
				mStore.On("Delete", ctx, "scopes/r/x.txt").Return(true, nil)
				mDocs.On("Delete", ctx, "doc-1").Return(nil)
			},
		},
		{
			name:          "keeps bytes when asked",
			deleteStorage: false,
			setupMocks: func(mStore *storeMocks.MockFileStorage, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "doc-1").
					Return(&model.Document{ID: "doc-1", StoragePath: "scopes/r/x.txt"}, nil)
				mDocs.On("Delete", ctx, "doc-1").Return(nil)
			},
		},
		{
			name:          "storage failure keeps the record",
			deleteStorage: true,
			setupMocks: func(mStore *storeMocks.MockFileStorage, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "doc-1").
					Return(&model.Document{ID: "doc-1", StoragePath: "scopes/r/x.txt"}, nil)
				mStore.On("Delete", ctx, "scopes/r/x.txt").Return(false, errors.New("io fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockFileStorage)
			mDocs := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mStore, model.BackendLocal, mDocs, nil, nil, 1<<20)

			tt.setupMocks(mStore, mDocs)

			err := svc.Delete(ctx, "doc-1", tt.deleteStorage)

			if tt.wantErr {
				var se *StorageError
				assert.ErrorAs(t, err, &se)
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mDocs.AssertExpectations(t)
		})
	}
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"README", ""},
		{"trailing.", ""},
		{".env", "env"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fileExtension(tt.in), "fileExtension(%q)", tt.in)
	}
}

func TestGenerateKey(t *testing.T) {
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)

	key := generateKey("reports", "pdf", now)
	assert.Regexp(t, `^scopes/reports/2026/03/2026-03-07_[0-9a-f]{12}\.pdf$`, key)

	noExt := generateKey("reports", "", now)
	assert.Regexp(t, `^scopes/reports/2026/03/2026-03-07_[0-9a-f]{12}$`, noExt)

	assert.NotEqual(t, key, generateKey("reports", "pdf", now), "suffixes must differ")
}
