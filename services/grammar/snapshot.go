package grammar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"bunpro-assist/lib/scrapers/bunpro"

	"github.com/mazen160/go-random"
)

const DefaultSnapshotPath = "bunpro_data.json"

// the snapshot file does not exist yet, a normal state before the
// first successful harvest
var NoSnapshotErr = fmt.Errorf("no grammar snapshot has been fetched yet")

// Store persists a StudyData snapshot as a single flat JSON file. Every
// save replaces the file wholesale, there is no merging across runs.
type Store struct {
	path string
}

func NewStore(path string) Store {
	if path == "" {
		path = DefaultSnapshotPath
	}
	return Store{path: path}
}

func (s Store) Path() string {
	return s.path
}

// both collections are always present in the snapshot, even when empty
func normalize(data *bunpro.StudyData) {
	if data.TroubledGrammar == nil {
		data.TroubledGrammar = []bunpro.GrammarPoint{}
	}
	if data.GhostReviews == nil {
		data.GhostReviews = []bunpro.GrammarPoint{}
	}
}

// Save writes the snapshot as indented UTF-8 JSON with HTML escaping
// disabled so Japanese text stays literal. The write goes through a
// temp file and a rename so a crash never leaves a torn snapshot.
func (s Store) Save(data bunpro.StudyData) error {
	normalize(&data)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(data)
	if err != nil {
		return err
	}

	suffix, err := random.String(8)
	if err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.%s.tmp", s.path, suffix)
	err = os.WriteFile(tmp, buf.Bytes(), 0600)
	if err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the current snapshot. A missing file reports NoSnapshotErr,
// callers are expected to treat that as "not yet fetched" rather than a
// failure.
func (s Store) Load() (bunpro.StudyData, error) {
	var data bunpro.StudyData
	contents, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		normalize(&data)
		return data, NoSnapshotErr
	}
	if err != nil {
		return data, err
	}
	err = json.Unmarshal(contents, &data)
	if err != nil {
		return data, err
	}
	normalize(&data)
	return data, nil
}
