package collate

import "github.com/squeek502/audiometa-sub000"

// MusicBrainzInfo holds the MusicBrainz Picard identifiers a tag may
// carry, extracted from whichever tag-native representation each format
// uses for them (ID3v2 user-defined text frames, Vorbis comments, MP4
// freeform atoms). See https://picard.musicbrainz.org/docs/mappings/.
type MusicBrainzInfo struct {
	AcoustID     string
	Album        string
	AlbumArtist  string
	Artist       string
	ReleaseGroup string
}

// musicBrainzFieldKeys mirrors fieldKeys' shape for the handful of
// MusicBrainz identifiers that are carried as plain text values (UFID's
// binary track-identifier frame is not covered: this package never
// decodes binary ID3v2 frames).
var musicBrainzFieldKeys = map[string]map[audiometa.Kind][]string{
	"acoustid_id": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"Acoustid Id"},
		audiometa.KindAPE:    {"Acoustid Id"},
		audiometa.KindFLAC:   {"ACOUSTID_ID"},
		audiometa.KindVorbis: {"ACOUSTID_ID"},
		audiometa.KindMP4:    {"com.apple.iTunes.Acoustid Id"},
	},
	"musicbrainz_albumid": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"MusicBrainz Album Id"},
		audiometa.KindAPE:    {"MusicBrainz Album Id"},
		audiometa.KindFLAC:   {"MUSICBRAINZ_ALBUMID"},
		audiometa.KindVorbis: {"MUSICBRAINZ_ALBUMID"},
		audiometa.KindMP4:    {"com.apple.iTunes.MusicBrainz Album Id"},
	},
	"musicbrainz_albumartistid": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"MusicBrainz Album Artist Id"},
		audiometa.KindAPE:    {"MusicBrainz Album Artist Id"},
		audiometa.KindFLAC:   {"MUSICBRAINZ_ALBUMARTISTID"},
		audiometa.KindVorbis: {"MUSICBRAINZ_ALBUMARTISTID"},
		audiometa.KindMP4:    {"com.apple.iTunes.MusicBrainz Album Artist Id"},
	},
	"musicbrainz_artistid": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"MusicBrainz Artist Id"},
		audiometa.KindAPE:    {"MusicBrainz Artist Id"},
		audiometa.KindFLAC:   {"MUSICBRAINZ_ARTISTID"},
		audiometa.KindVorbis: {"MUSICBRAINZ_ARTISTID"},
		audiometa.KindMP4:    {"com.apple.iTunes.MusicBrainz Artist Id"},
	},
	"musicbrainz_releasegroupid": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"MusicBrainz Release Group Id"},
		audiometa.KindAPE:    {"MusicBrainz Release Group Id"},
		audiometa.KindFLAC:   {"MUSICBRAINZ_RELEASEGROUPID"},
		audiometa.KindVorbis: {"MUSICBRAINZ_RELEASEGROUPID"},
		audiometa.KindMP4:    {"com.apple.iTunes.MusicBrainz Release Group Id"},
	},
}

func (c *Collator) musicBrainzValue(field string) (string, bool) {
	for _, t := range c.orderedTags() {
		for _, key := range musicBrainzFieldKeys[field][t.Kind] {
			if v, ok := t.Map.GetFirst(key); ok {
				if v := ameliorateCanonical(v); v != "" {
					return v, true
				}
			}
		}
	}
	return "", false
}

// MusicBrainz extracts whatever MusicBrainz Picard identifiers are
// present across all discovered tags, prioritised the same way as any
// other field.
func (c *Collator) MusicBrainz() MusicBrainzInfo {
	var info MusicBrainzInfo
	info.AcoustID, _ = c.musicBrainzValue("acoustid_id")
	info.Album, _ = c.musicBrainzValue("musicbrainz_albumid")
	info.AlbumArtist, _ = c.musicBrainzValue("musicbrainz_albumartistid")
	info.Artist, _ = c.musicBrainzValue("musicbrainz_artistid")
	info.ReleaseGroup, _ = c.musicBrainzValue("musicbrainz_releasegroupid")
	return info
}
