package main

import "context"

// newGlobalMetadata builds the site-wide record every build starts from.
// It is not modified after construction.
func newGlobalMetadata(conf *SiteConf, prod bool) Metadata {
	return Metadata{
		"site": Metadata{
			"url":       conf.SiteURL,
			"title":     conf.SiteTitle,
			"author":    conf.Author,
			"authorUri": conf.AuthorURI,
			"prod":      prod,
		},
	}
}

// patchMetadata merges global into ctx in place. Global values win on key
// collisions; nested maps are merged key by key so keys only present in ctx
// survive. Applying it twice changes nothing the second time.
func patchMetadata(ctx, global Metadata) {
	for k, gv := range global {
		gm, gIsMap := asMetadata(gv)
		if !gIsMap {
			ctx[k] = gv
			continue
		}
		cm, cIsMap := asMetadata(ctx[k])
		if !cIsMap {
			ctx[k] = gm.Clone()
			continue
		}
		patchMetadata(cm, gm)
		ctx[k] = cm
	}
}

func asMetadata(v any) (Metadata, bool) {
	switch t := v.(type) {
	case Metadata:
		return t, t != nil
	case map[string]any:
		return Metadata(t), t != nil
	}
	return nil, false
}

// metadataPatch re-injects the global record into the build context. The
// runner already does this before each stage; the explicit stage is kept so
// a pipeline can pin the merge right after a stage known to reset the
// context.
func metadataPatch(global Metadata) Stage {
	return Stage{
		Name: "metadata-patch",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			if b.Meta == nil {
				b.Meta = Metadata{}
			}
			patchMetadata(b.Meta, global)
			return files, nil
		},
	}
}
