package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/model"
	"github.com/lychee-technology/notionmap/objapi"
)

// SearchPage searches pages by title; an empty title returns all of them.
func (s *Session) SearchPage(ctx context.Context, title string, exact bool) ([]*model.Page, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	raws, err := s.transport.Search(ctx, notionmap.SearchQuery{Query: title, Object: notionmap.ObjectKindPage})
	if err != nil {
		return nil, err
	}
	pages := make([]*model.Page, 0, len(raws))
	for _, raw := range raws {
		page, err := s.materializePage(ctx, raw, false)
		if err != nil {
			return nil, err
		}
		if exact && title != "" && page.Title().String() != title {
			continue
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// GetPage retrieves a page by id or URL.
func (s *Session) GetPage(ctx context.Context, ref string, useCache bool) (*model.Page, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	id, err := notionmap.NormalizeID(ref)
	if err != nil {
		return nil, err
	}
	if useCache {
		if page, ok := cached[*model.Page](ctx, s, id); ok {
			return page, nil
		}
	}
	raw, err := s.transport.Retrieve(ctx, notionmap.ObjectKindPage, id)
	if err != nil {
		return nil, err
	}
	return s.materializePage(ctx, raw, true)
}

// CreatePage creates a page below parent. An empty title leaves the page untitled.
func (s *Session) CreatePage(ctx context.Context, parent *model.Page, title string) (*model.Page, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, notionmap.NewValidationError("parent", "a parent page is required")
	}
	props := objapi.PropertyMap{}
	if title != "" {
		props[model.TitleKey] = &objapi.Title{Title: model.FromPlainText(title).Obj()}
	}
	payload, err := json.Marshal(objapi.PageCreate{
		Parent:     &objapi.PageParent{PageID: parent.ID()},
		Properties: props,
	})
	if err != nil {
		return nil, notionmap.NewInternalError("failed to encode page", err)
	}
	raw, err := s.transport.Create(ctx, notionmap.ObjectKindPage, payload)
	if err != nil {
		return nil, err
	}
	return s.materializePage(ctx, raw, true)
}

func (s *Session) materializePage(ctx context.Context, raw json.RawMessage, refresh bool) (*model.Page, error) {
	obj, err := objapi.DecodePage(raw)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, notionmap.ObjectKindPage, obj.ID, raw)
	if existing, ok := cached[*model.Page](ctx, s, obj.ID); ok {
		if refresh {
			existing.Reload(obj)
		}
		return existing, nil
	}
	return adopt(s, obj.ID, model.NewPage(obj)), nil
}

// GetUser retrieves a user by id.
func (s *Session) GetUser(ctx context.Context, ref string, useCache bool) (*model.User, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	id, err := notionmap.NormalizeID(ref)
	if err != nil {
		return nil, err
	}
	if useCache {
		if user, ok := cached[*model.User](ctx, s, id); ok {
			return user, nil
		}
	}
	raw, err := s.transport.Retrieve(ctx, notionmap.ObjectKindUser, id)
	if err != nil {
		return nil, err
	}
	return s.materializeUser(ctx, raw, true)
}

// Whoami returns the bot user behind the token.
func (s *Session) Whoami(ctx context.Context) (*model.User, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	raw, err := s.transport.Me(ctx)
	if err != nil {
		return nil, err
	}
	return s.materializeUser(ctx, raw, true)
}

// AllUsers lists the users of the workspace.
func (s *Session) AllUsers(ctx context.Context) ([]*model.User, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	raws, err := s.transport.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(raws))
	for _, raw := range raws {
		user, err := s.materializeUser(ctx, raw, true)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Session) materializeUser(ctx context.Context, raw json.RawMessage, refresh bool) (*model.User, error) {
	user, err := decodeUser(raw)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, notionmap.ObjectKindUser, user.ID(), raw)
	if existing, ok := cached[*model.User](ctx, s, user.ID()); ok {
		if refresh {
			existing.Reload(user.Obj())
		}
		return existing, nil
	}
	return adopt(s, user.ID(), user), nil
}

func decodeUser(raw json.RawMessage) (*model.User, error) {
	obj, err := objapi.DecodeUser(raw)
	if err != nil {
		if notionmap.IsDecodeError(err) {
			return nil, err
		}
		return nil, notionmap.NewDecodeError("decode user", err)
	}
	if obj == nil {
		return nil, notionmap.NewDecodeError("empty user payload", nil)
	}
	return model.NewUser(obj), nil
}

// GetBlock retrieves a block. Blocks are not cached.
func (s *Session) GetBlock(ctx context.Context, ref string) (*objapi.Block, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	id, err := notionmap.NormalizeID(ref)
	if err != nil {
		return nil, err
	}
	raw, err := s.transport.Retrieve(ctx, notionmap.ObjectKindBlock, id)
	if err != nil {
		return nil, err
	}
	block, err := objapi.DecodeBlock(raw)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, notionmap.ObjectKindBlock, block.ID, raw)
	return block, nil
}

// Restore materializes an object from the snapshot store without contacting the
// remote. It returns *model.Page, *model.Database, *model.User or *objapi.Block.
func (s *Session) Restore(ctx context.Context, ref string) (any, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return nil, notionmap.NewValidationError("snapshots", "no snapshot store is configured")
	}
	id, err := notionmap.NormalizeID(ref)
	if err != nil {
		return nil, err
	}
	if v, ok := s.cache.Get(ctx, id); ok {
		return v, nil
	}
	snap, err := s.snapshots.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch snap.Kind {
	case notionmap.ObjectKindPage:
		obj, err := objapi.DecodePage(snap.Payload)
		if err != nil {
			return nil, err
		}
		return adopt(s, obj.ID, model.NewPage(obj)), nil
	case notionmap.ObjectKindDatabase:
		obj, err := objapi.DecodeDatabase(snap.Payload)
		if err != nil {
			return nil, err
		}
		db, err := model.NewDatabase(obj)
		if err != nil {
			return nil, err
		}
		return adopt(s, obj.ID, db), nil
	case notionmap.ObjectKindUser:
		user, err := decodeUser(snap.Payload)
		if err != nil {
			return nil, err
		}
		return adopt(s, user.ID(), user), nil
	case notionmap.ObjectKindBlock:
		return objapi.DecodeBlock(snap.Payload)
	default:
		return nil, notionmap.NewUnknownVariantError("snapshot kind", fmt.Sprint(snap.Kind))
	}
}
