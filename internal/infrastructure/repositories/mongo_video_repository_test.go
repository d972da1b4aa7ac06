package repositories

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"video-hub/internal/domain/dto"
	"video-hub/internal/domain/entities"
)

func TestDocumentMapping(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	in := entities.Video{
		ID:          primitive.NewObjectID().Hex(),
		Title:       "t",
		Description: "d",
		VideoFile:   "http://x/upload/a.mp4",
		Thumbnail:   "http://x/upload/b.jpg",
		Duration:    12.5,
		Owner:       primitive.NewObjectID().Hex(),
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc, err := toDocument(&in)
	if err != nil {
		t.Fatalf("toDocument: %v", err)
	}
	if out := fromDocument(doc); out != in {
		t.Errorf("mapping changed the record:\n got %+v\nwant %+v", out, in)
	}
}

func TestDocumentMappingRejectsBadIDs(t *testing.T) {
	if _, err := toDocument(&entities.Video{ID: "nope"}); err == nil {
		t.Error("expected error for non-hex id")
	}
	if _, err := toDocument(&entities.Video{ID: primitive.NewObjectID().Hex(), Owner: "user-1"}); err == nil {
		t.Error("expected error for non-hex owner")
	}
}

func TestDocumentWithoutOwner(t *testing.T) {
	doc, err := toDocument(&entities.Video{ID: primitive.NewObjectID().Hex()})
	if err != nil {
		t.Fatal(err)
	}
	if v := fromDocument(doc); v.Owner != "" {
		t.Errorf("owner = %q, want empty", v.Owner)
	}
}

func TestListQuery(t *testing.T) {
	owner := primitive.NewObjectID()
	query, ok := listQuery(dto.VideoFilter{Query: "a.b(c", OwnerID: owner.Hex()})
	if !ok {
		t.Fatal("listQuery rejected a valid filter")
	}
	pattern := primitive.Regex{Pattern: `a\.b\(c`, Options: "i"}
	want := bson.M{
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		},
		"owner": owner,
	}
	if !reflect.DeepEqual(query, want) {
		t.Errorf("query = %#v, want %#v", query, want)
	}

	if query, ok := listQuery(dto.VideoFilter{}); !ok || len(query) != 0 {
		t.Errorf("empty filter = %#v, %v", query, ok)
	}
	if _, ok := listQuery(dto.VideoFilter{OwnerID: "not-an-id"}); ok {
		t.Error("invalid owner id should match nothing")
	}
}

func TestListOptions(t *testing.T) {
	cases := []struct {
		name   string
		filter dto.VideoFilter
		sort   bson.D
	}{
		{"whitelisted ascending", dto.VideoFilter{SortBy: "title"},
			bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}},
		{"descending", dto.VideoFilter{SortBy: "duration", Desc: true},
			bson.D{{Key: "duration", Value: -1}, {Key: "_id", Value: -1}}},
		{"unknown field", dto.VideoFilter{SortBy: "owner"},
			bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.filter.Skip, c.filter.Limit = 20, 10
			opts := listOptions(c.filter)
			if !reflect.DeepEqual(opts.Sort, c.sort) {
				t.Errorf("sort = %#v, want %#v", opts.Sort, c.sort)
			}
			if opts.Skip == nil || *opts.Skip != 20 || opts.Limit == nil || *opts.Limit != 10 {
				t.Errorf("skip/limit = %v/%v", opts.Skip, opts.Limit)
			}
		})
	}
}
