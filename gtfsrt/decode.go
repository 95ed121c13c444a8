package gtfsrt

import (
	"context"
	"fmt"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// ByteFetcher retrieves a raw feed body from a URL or local path.
type ByteFetcher interface {
	FetchBytes(ctx context.Context, urlOrPath string) ([]byte, error)
}

// Decode parses a serialized FeedMessage.
func Decode(b []byte) (*gtfsrtpb.FeedMessage, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, fmt.Errorf("decode GTFS-RT feed: %w", err)
	}
	return &fm, nil
}

// Fetch retrieves and decodes one feed.
func Fetch(ctx context.Context, f ByteFetcher, url string) (*gtfsrtpb.FeedMessage, error) {
	b, err := f.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	fm, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return fm, nil
}

// HeaderTime returns the feed header timestamp, if set.
func HeaderTime(fm *gtfsrtpb.FeedMessage) (time.Time, bool) {
	ts := fm.GetHeader().GetTimestamp()
	if ts == 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(ts), 0).UTC(), true
}
