package notionmap

import (
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ParseID extracts the object id from a dashed or undashed uuid or from a
// page/database URL such as https://www.notion.so/workspace/Title-0123456789abcdef0123456789abcdef.
func ParseID(ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return uuid.Nil, NewInvalidIDError(ref, err)
	}

	last := path.Base(u.Path)
	if idx := strings.LastIndex(last, "-"); idx >= 0 {
		last = last[idx+1:]
	}
	id, err := uuid.Parse(last)
	if err != nil {
		return uuid.Nil, NewInvalidIDError(ref, err)
	}
	return id, nil
}

// NormalizeID returns the canonical dashed form of an object reference.
func NormalizeID(ref string) (string, error) {
	id, err := ParseID(ref)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
