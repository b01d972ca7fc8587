package cvelist

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

const jsonExt = ".json"

type options struct {
	fs            afero.Fs
	workers       int
	progress      bool
	dedupeMatches bool
}

type option func(*options)

func WithFs(fs afero.Fs) option {
	return func(opts *options) {
		opts.fs = fs
	}
}

// WithWorkers sets how many files are decoded concurrently. Values below 2
// keep the scan sequential.
func WithWorkers(n int) option {
	return func(opts *options) {
		opts.workers = n
	}
}

func WithProgress(progress bool) option {
	return func(opts *options) {
		opts.progress = progress
	}
}

// WithDedupeMatches counts a record's problem types once, however many of its
// affected entries name a target product.
func WithDedupeMatches(dedupe bool) option {
	return func(opts *options) {
		opts.dedupeMatches = dedupe
	}
}

// Collector counts problem type descriptions of a CVE List v5 tree laid out
// as <base>/<year>/<bucket>/<id>.json.
type Collector struct {
	*options
}

func NewCollector(opts ...option) Collector {
	o := &options{
		fs:       afero.NewOsFs(),
		workers:  1,
		progress: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return Collector{
		options: o,
	}
}

// Collect scans baseDir for records affecting one of products, limited to
// year folders in [from, to]. Every year of the range is present in the
// returned table.
func (c Collector) Collect(baseDir string, products map[string]struct{}, from, to int) (Result, error) {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return Result{}, xerrors.Errorf("unable to resolve %s: %w", baseDir, err)
	}

	table := Table{}
	for y := from; y <= to; y++ {
		table.ensure(strconv.Itoa(y))
	}

	paths, err := c.jsonFiles(base, from, to)
	if err != nil {
		return Result{}, err
	}
	log.Printf("Total JSON files found: %d", len(paths))

	bar := c.newBar(len(paths))
	defer bar.Finish()

	var shards []shard
	if c.workers > 1 {
		shards, err = c.scanParallel(base, paths, products, bar)
	} else {
		var s shard
		s, err = c.scan(base, paths, products, bar)
		shards = []shard{s}
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Table: table,
		Files: len(paths),
	}
	for _, s := range shards {
		res.Table.Merge(s.table)
		res.Matches += s.matches
		res.Malformed += s.malformed
	}
	return res, nil
}

// jsonFiles lists <base>/<year>/<bucket>/*.json for qualifying years.
func (c Collector) jsonFiles(base string, from, to int) ([]string, error) {
	yearDirs, err := afero.ReadDir(c.fs, base)
	if err != nil {
		return nil, xerrors.Errorf("unable to read %s: %w", base, err)
	}

	var paths []string
	for _, yd := range yearDirs {
		if !yd.IsDir() || !inRange(yd.Name(), from, to) {
			continue
		}
		yearPath := filepath.Join(base, yd.Name())
		buckets, err := afero.ReadDir(c.fs, yearPath)
		if err != nil {
			return nil, xerrors.Errorf("unable to read %s: %w", yearPath, err)
		}
		for _, bd := range buckets {
			if !bd.IsDir() {
				continue
			}
			bucketPath := filepath.Join(yearPath, bd.Name())
			files, err := afero.ReadDir(c.fs, bucketPath)
			if err != nil {
				return nil, xerrors.Errorf("unable to read %s: %w", bucketPath, err)
			}
			for _, f := range files {
				if f.IsDir() || !strings.HasSuffix(f.Name(), jsonExt) {
					continue
				}
				paths = append(paths, filepath.Join(bucketPath, f.Name()))
			}
		}
	}
	return paths, nil
}

// shard is the partial result of one worker.
type shard struct {
	table     Table
	matches   int
	malformed int
}

func (c Collector) scan(base string, paths []string, products map[string]struct{}, bar *pb.ProgressBar) (shard, error) {
	s := shard{table: Table{}}
	for _, path := range paths {
		if err := c.scanFile(base, path, products, &s); err != nil {
			return shard{}, err
		}
		bar.Increment()
	}
	return s, nil
}

func (c Collector) scanParallel(base string, paths []string, products map[string]struct{}, bar *pb.ProgressBar) ([]shard, error) {
	pathCh := make(chan string)
	shards := make([]shard, c.workers)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer close(pathCh)
		for _, path := range paths {
			select {
			case pathCh <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := range shards {
		s := &shards[i]
		s.table = Table{}
		g.Go(func() error {
			for path := range pathCh {
				if err := c.scanFile(base, path, products, s); err != nil {
					return err
				}
				bar.Increment()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return shards, nil
}

func (c Collector) scanFile(base, path string, products map[string]struct{}, s *shard) error {
	year, err := yearOf(base, path)
	if err != nil {
		return err
	}

	b, err := c.readFile(path)
	if err != nil {
		return err
	}

	doc, err := decodeRecord(b)
	if err != nil {
		log.Printf("Error reading JSON file (%s): %s", path, err)
		s.malformed++
		return nil
	}

	m := matchRecord(doc, products)
	s.matches += m.hits

	times := m.hits
	if c.dedupeMatches && times > 1 {
		times = 1
	}
	for i := 0; i < times; i++ {
		for _, t := range m.types {
			s.table.add(year, t)
		}
	}
	return nil
}

func (c Collector) readFile(path string) ([]byte, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("file open error (%s): %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, xerrors.Errorf("file read error (%s): %w", path, err)
	}
	return b, nil
}

func (c Collector) newBar(total int) *pb.ProgressBar {
	bar := pb.New(total)
	if !c.progress {
		bar.SetWriter(io.Discard)
	} else {
		bar.SetWriter(os.Stderr)
	}
	return bar.Start()
}

// yearOf returns the first component of path relative to base.
func yearOf(base, path string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", xerrors.Errorf("unable to get the year of %s: %w", path, err)
	}
	year, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return year, nil
}

// inRange reports whether name is a four digit year in [from, to].
func inRange(name string, from, to int) bool {
	if len(name) != 4 {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	y, err := strconv.Atoi(name)
	if err != nil {
		return false
	}
	return from <= y && y <= to
}
