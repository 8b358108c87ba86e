// Package sources enumerates item identifiers from the supported input
// kinds: direct links, link list files and the paginated timeline listings
// (channel, tag, search, community, story, hot section, random and the
// editorial features).
package sources
