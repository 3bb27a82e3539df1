// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"slices"

	"varup/internal/pkgmgr"
	"varup/internal/variant"
)

// fakeApt is a call-recording AptClient double.
type fakeApt struct {
	updates      int
	cleans       int
	installed    []string
	preinstalled []string
	failPackage  string
	failCode     int
}

func (f *fakeApt) Update(ctx context.Context) error { f.updates++; return nil }

func (f *fakeApt) Install(ctx context.Context, pkg string) error {
	if pkg == f.failPackage {
		return &pkgmgr.ExitStatusError{Argv: []string{"apt-get", "install", pkg}, Code: f.failCode}
	}
	f.installed = append(f.installed, pkg)
	return nil
}

func (f *fakeApt) IsInstalled(ctx context.Context, pkg string) bool {
	return slices.Contains(f.preinstalled, pkg) || slices.Contains(f.installed, pkg)
}

func (f *fakeApt) CleanCache(ctx context.Context) error { f.cleans++; return nil }

type pipCall struct {
	specs    []string
	indexURL string
}

// fakePip is a call-recording PipClient double.
type fakePip struct {
	calls    []pipCall
	failSpec string
	failCode int
}

func (f *fakePip) Install(ctx context.Context, specs []string, opts ...pkgmgr.InstallOption) error {
	o := pkgmgr.ApplyInstallOptions(opts...)
	f.calls = append(f.calls, pipCall{specs: slices.Clone(specs), indexURL: o.IndexURL})
	for _, spec := range specs {
		if spec == f.failSpec {
			return &pkgmgr.ExitStatusError{Argv: []string{"pip3", "install", spec}, Code: f.failCode}
		}
	}
	return nil
}

// recordingStage counts its invocations, optionally failing.
type recordingStage struct {
	name string
	runs int
	err  error
	// order points at a shared log of stage invocations
	order *[]string
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Run(ctx context.Context, d *variant.Descriptor) error {
	s.runs++
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	return s.err
}
