package collate

import "github.com/squeek502/audiometa-sub000"

// fieldKeys maps a logical field name to, for each tag kind, the ordered
// list of tag-native keys that may hold it. Lookup tries each key in
// order and takes the first the tag's MetadataMap contains.
var fieldKeys = map[string]map[audiometa.Kind][]string{
	"title": {
		audiometa.KindID3v1:  {"title"},
		audiometa.KindID3v2:  {"TIT2", "TT2"},
		audiometa.KindAPE:    {"Title"},
		audiometa.KindFLAC:   {"TITLE"},
		audiometa.KindVorbis: {"TITLE"},
		audiometa.KindMP4:    {"\xa9nam"},
	},
	"artist": {
		audiometa.KindID3v1:  {"artist"},
		audiometa.KindID3v2:  {"TPE1", "TP1"},
		audiometa.KindAPE:    {"Artist"},
		audiometa.KindFLAC:   {"ARTIST"},
		audiometa.KindVorbis: {"ARTIST"},
		audiometa.KindMP4:    {"\xa9ART", "\xa9art"},
	},
	"album_artist": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"TPE2", "TP2"},
		audiometa.KindAPE:    {"Album Artist"},
		audiometa.KindFLAC:   {"ALBUMARTIST"},
		audiometa.KindVorbis: {"ALBUMARTIST"},
		audiometa.KindMP4:    {"aART"},
	},
	"album": {
		audiometa.KindID3v1:  {"album"},
		audiometa.KindID3v2:  {"TALB", "TAL"},
		audiometa.KindAPE:    {"Album"},
		audiometa.KindFLAC:   {"ALBUM"},
		audiometa.KindVorbis: {"ALBUM"},
		audiometa.KindMP4:    {"\xa9alb"},
	},
	"date": {
		audiometa.KindID3v1:  {"date"},
		audiometa.KindID3v2:  {"TDRC", "TYER", "TYE"},
		audiometa.KindAPE:    {"Year"},
		audiometa.KindFLAC:   {"DATE"},
		audiometa.KindVorbis: {"DATE"},
		audiometa.KindMP4:    {"\xa9day"},
	},
	"genre": {
		audiometa.KindID3v1:  {"genre"},
		audiometa.KindID3v2:  {"TCON", "TCO"},
		audiometa.KindAPE:    {"Genre"},
		audiometa.KindFLAC:   {"GENRE"},
		audiometa.KindVorbis: {"GENRE"},
		audiometa.KindMP4:    {"\xa9gen", "gnre"},
	},
	"composer": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"TCOM", "TCM"},
		audiometa.KindAPE:    {"Composer"},
		audiometa.KindFLAC:   {"COMPOSER"},
		audiometa.KindVorbis: {"COMPOSER"},
		audiometa.KindMP4:    {"\xa9wrt"},
	},
	"comment": {
		audiometa.KindID3v1:  {"comment"},
		audiometa.KindID3v2:  {},
		audiometa.KindAPE:    {"Comment"},
		audiometa.KindFLAC:   {"COMMENT"},
		audiometa.KindVorbis: {"COMMENT"},
		audiometa.KindMP4:    {"\xa9cmt"},
	},
	"copyright": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"TCOP", "TCR"},
		audiometa.KindAPE:    {"Copyright"},
		audiometa.KindFLAC:   {"COPYRIGHT"},
		audiometa.KindVorbis: {"COPYRIGHT"},
		audiometa.KindMP4:    {"cprt"},
	},
	"encoder": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"TENC", "TEN"},
		audiometa.KindAPE:    {},
		audiometa.KindFLAC:   {"ENCODER"},
		audiometa.KindVorbis: {"ENCODER"},
		audiometa.KindMP4:    {"\xa9too"},
	},
	"grouping": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"TIT1", "TT1"},
		audiometa.KindAPE:    {"Grouping"},
		audiometa.KindFLAC:   {"GROUPING"},
		audiometa.KindVorbis: {"GROUPING"},
		audiometa.KindMP4:    {"\xa9grp"},
	},
	"track_number": {
		audiometa.KindID3v1:  {"track"},
		audiometa.KindID3v2:  {"TRCK", "TRK"},
		audiometa.KindAPE:    {"Track"},
		audiometa.KindFLAC:   {"TRACKNUMBER"},
		audiometa.KindVorbis: {"TRACKNUMBER"},
		audiometa.KindMP4:    {"trkn"},
	},
	"track_total": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {},
		audiometa.KindAPE:    {},
		audiometa.KindFLAC:   {"TRACKTOTAL", "TOTALTRACKS"},
		audiometa.KindVorbis: {"TRACKTOTAL", "TOTALTRACKS"},
		audiometa.KindMP4:    {},
	},
	"disc_number": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {"TPOS", "TPA"},
		audiometa.KindAPE:    {"Disc"},
		audiometa.KindFLAC:   {"DISCNUMBER"},
		audiometa.KindVorbis: {"DISCNUMBER"},
		audiometa.KindMP4:    {"disk"},
	},
	"disc_total": {
		audiometa.KindID3v1:  {},
		audiometa.KindID3v2:  {},
		audiometa.KindAPE:    {},
		audiometa.KindFLAC:   {"DISCTOTAL", "TOTALDISCS"},
		audiometa.KindVorbis: {"DISCTOTAL", "TOTALDISCS"},
		audiometa.KindMP4:    {},
	},
}

// allKinds is every tag kind a fieldKeys entry must cover (even if the
// covering value is an empty key list, meaning that kind simply has no
// native key for the field).
var allKinds = []audiometa.Kind{
	audiometa.KindID3v1,
	audiometa.KindID3v2,
	audiometa.KindAPE,
	audiometa.KindFLAC,
	audiometa.KindVorbis,
	audiometa.KindMP4,
}

func keysFor(field string, kind audiometa.Kind) []string {
	return fieldKeys[field][kind]
}
