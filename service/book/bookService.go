package booksvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/service/svcerr"
)

// MaxImageSize bounds cover uploads.
const MaxImageSize = 5 << 20

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, includeHidden bool) ([]model.Book, error)
	Detail(ctx context.Context, id uuid.UUID) (*model.Book, error)
	// Update runs mutate against the locked row and persists the result.
	Update(ctx context.Context, id uuid.UUID, mutate func(b *model.Book) error) (*model.Book, error)
	// DeleteUnreferenced deletes the book unless rentals reference it and
	// returns how many do.
	DeleteUnreferenced(ctx context.Context, id uuid.UUID) (int64, error)
}

type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

type Image struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service interface {
	Create(ctx context.Context, adminID uuid.UUID, req model.CreateBookReq) (*model.Book, error)
	List(ctx context.Context, includeHidden bool) ([]model.Book, error)
	Detail(ctx context.Context, id uuid.UUID) (*model.Book, error)
	Edit(ctx context.Context, adminID, id uuid.UUID, req model.UpdateBookReq) (*model.Book, error)
	SetFlags(ctx context.Context, adminID, id uuid.UUID, req model.BookFlagsReq) (*model.Book, error)
	SetImage(ctx context.Context, adminID, id uuid.UUID, img Image) (*model.Book, error)
	Remove(ctx context.Context, adminID, id uuid.UUID) error
}

type service struct {
	r      Repo
	images ImageStore
	log    *slog.Logger
}

// New builds the catalog service. images may be nil when object storage is
// not configured; SetImage then fails with InvalidOperation.
func New(r Repo, images ImageStore, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{r: r, images: images, log: log}
}

func (s *service) Create(ctx context.Context, adminID uuid.UUID, req model.CreateBookReq) (*model.Book, error) {
	title, author, isbn := strings.TrimSpace(req.Title), strings.TrimSpace(req.Author), strings.TrimSpace(req.ISBN)
	if title == "" || author == "" || isbn == "" {
		return nil, svcerr.NewInvalid("title, author and isbn are required")
	}
	if req.TotalCopies < 0 {
		return nil, svcerr.NewInvalid("total copies cannot be negative")
	}
	available := req.TotalCopies
	if req.AvailableCopies != nil {
		available = *req.AvailableCopies
		if available < 0 || available > req.TotalCopies {
			return nil, svcerr.NewInvalid("available copies must be between 0 and total copies")
		}
	}
	loan := true
	if req.LoanEnabled != nil {
		loan = *req.LoanEnabled
	}

	b := &model.Book{
		AdminID:         adminID,
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		Description:     req.Description,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: available,
		IsHidden:        req.IsHidden,
		LoanEnabled:     loan,
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, mapWriteErr("create book", err)
	}
	return b, nil
}

func (s *service) List(ctx context.Context, includeHidden bool) ([]model.Book, error) {
	books, err := s.r.List(ctx, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *service) Detail(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcerr.NewNotFound("book not found")
		}
		return nil, fmt.Errorf("book detail: %w", err)
	}
	return b, nil
}

// Edit applies a partial update. A total change without an explicit
// available count shifts available by the same delta so copies on loan stay
// accounted for.
func (s *service) Edit(ctx context.Context, adminID, id uuid.UUID, req model.UpdateBookReq) (*model.Book, error) {
	b, err := s.r.Update(ctx, id, func(b *model.Book) error {
		if b.AdminID != adminID {
			return svcerr.NewForbidden("only the creator can edit this book")
		}
		if req.Title != nil {
			b.Title = strings.TrimSpace(*req.Title)
		}
		if req.Author != nil {
			b.Author = strings.TrimSpace(*req.Author)
		}
		if req.ISBN != nil {
			b.ISBN = strings.TrimSpace(*req.ISBN)
		}
		if req.Description != nil {
			b.Description = *req.Description
		}
		if b.Title == "" || b.Author == "" || b.ISBN == "" {
			return svcerr.NewInvalid("title, author and isbn cannot be empty")
		}

		oldTotal := b.TotalCopies
		if req.TotalCopies != nil {
			if *req.TotalCopies < 0 {
				return svcerr.NewInvalid("total copies cannot be negative")
			}
			b.TotalCopies = *req.TotalCopies
		}
		switch {
		case req.AvailableCopies != nil:
			if *req.AvailableCopies < 0 || *req.AvailableCopies > b.TotalCopies {
				return svcerr.NewInvalid("available copies must be between 0 and total copies")
			}
			b.AvailableCopies = *req.AvailableCopies
		case b.TotalCopies != oldTotal:
			b.AvailableCopies = RecomputeAvailable(b.AvailableCopies, oldTotal, b.TotalCopies)
		}
		return nil
	})
	if err != nil {
		return nil, mapWriteErr("edit book", err)
	}
	return b, nil
}

// RecomputeAvailable keeps the on-loan count when total changes, floored at 0.
func RecomputeAvailable(available, oldTotal, newTotal int) int {
	return max(0, available+(newTotal-oldTotal))
}

func (s *service) SetFlags(ctx context.Context, adminID, id uuid.UUID, req model.BookFlagsReq) (*model.Book, error) {
	b, err := s.r.Update(ctx, id, func(b *model.Book) error {
		if b.AdminID != adminID {
			return svcerr.NewForbidden("only the creator can edit this book")
		}
		if req.IsHidden != nil {
			b.IsHidden = *req.IsHidden
		}
		if req.LoanEnabled != nil {
			b.LoanEnabled = *req.LoanEnabled
		}
		return nil
	})
	if err != nil {
		return nil, mapWriteErr("set book flags", err)
	}
	return b, nil
}

func (s *service) SetImage(ctx context.Context, adminID, id uuid.UUID, img Image) (*model.Book, error) {
	if s.images == nil {
		return nil, svcerr.NewInvalid("image storage is not configured")
	}
	ext, ok := imageExt[img.ContentType]
	if !ok {
		return nil, svcerr.NewInvalid("only jpeg, png, gif and webp images are allowed")
	}
	if img.Size <= 0 || img.Size > MaxImageSize {
		return nil, svcerr.New(svcerr.InvalidOperation, "image must be between 1 byte and %d bytes", MaxImageSize)
	}

	cur, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.AdminID != adminID {
		return nil, svcerr.NewForbidden("only the creator can edit this book")
	}

	key := path.Join("books", id.String(), uuid.NewString()+ext)
	url, err := s.images.Upload(ctx, key, img.ContentType, img.Body, img.Size)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	var previous *string
	b, err := s.r.Update(ctx, id, func(b *model.Book) error {
		if b.AdminID != adminID {
			return svcerr.NewForbidden("only the creator can edit this book")
		}
		previous = b.ImageURL
		b.ImageURL = &url
		return nil
	})
	if err != nil {
		s.dropImage(ctx, url)
		return nil, mapWriteErr("set book image", err)
	}
	if previous != nil {
		s.dropImage(ctx, *previous)
	}
	return b, nil
}

// Remove deletes a book that no rental has ever referenced.
func (s *service) Remove(ctx context.Context, adminID, id uuid.UUID) error {
	b, err := s.Detail(ctx, id)
	if err != nil {
		return err
	}
	if b.AdminID != adminID {
		return svcerr.NewForbidden("only the creator can delete this book")
	}

	blocking, err := s.r.DeleteUnreferenced(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return svcerr.NewNotFound("book not found")
		}
		if errors.Is(err, repository.ErrReference) {
			return svcerr.NewInvalid("cannot delete book: it is referenced by rentals")
		}
		return fmt.Errorf("remove book: %w", err)
	}
	if blocking > 0 {
		return svcerr.New(svcerr.InvalidOperation,
			"cannot delete book: %d rental(s) reference it", blocking)
	}

	if b.ImageURL != nil {
		s.dropImage(ctx, *b.ImageURL)
	}
	return nil
}

func (s *service) dropImage(ctx context.Context, url string) {
	if s.images == nil {
		return
	}
	if err := s.images.DeleteByURL(ctx, url); err != nil {
		s.log.Warn("delete book image failed", "url", url, "err", err)
	}
}

func mapWriteErr(op string, err error) error {
	switch {
	case svcerr.Code(err) != "":
		return err
	case errors.Is(err, repository.ErrNotFound):
		return svcerr.NewNotFound("book not found")
	case errors.Is(err, repository.ErrDuplicate):
		return svcerr.NewConflict("a book with this isbn already exists")
	case errors.Is(err, repository.ErrCheck):
		return svcerr.NewInvalid("available copies must be between 0 and total copies")
	}
	return fmt.Errorf("%s: %w", op, err)
}
