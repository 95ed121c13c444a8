/*
Package feed turns loosely typed upstream payloads into a clean, time-ordered
stream of queue readings.

Upstream sources (n8n webhooks, static JSON files) do not agree on an envelope:
some return a plain array of records, some wrap every record as {"json": {...}},
some nest the array under "data" or "items", and some return a single object.
The pipeline resolves the envelope, validates every record and keeps only the
readings that fall inside a caller-supplied time window:

	payload, _ := client.FetchJSON(ctx, url)
	res := feed.Run(payload, feed.LastWindow(time.Now(), 24*time.Hour), feed.Options{})
	if len(res.Records) == 0 {
	    // no usable records; not a transport failure
	}
	latest := res.Latest

# Timestamps

Every timestamp field goes through ParseTimestamp. Numbers below 2e12 are unix
seconds, anything at or above is unix milliseconds. Digit-only strings follow the
same rule; other strings are parsed as calendar dates.

# Dropped records

Records without a parseable timeAdded or with a non-numeric lineSize/partySize
are dropped and never reported individually. DropStats keeps a per-reason count
with a few example ids so feed problems can still be diagnosed from the logs.

A pipeline invocation performs no I/O and holds no shared state; it is safe to
call from any goroutine.
*/
package feed
