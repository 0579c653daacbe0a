package options

import (
	"strings"

	"github.com/spf13/viper"
)

// Load builds an Options value from, in increasing precedence: built-in
// defaults, an optional YAML config file, environment variables prefixed
// NDNFS_, and finally the given OptionFuncs (typically populated from
// cobra flags in cmd/ndnfsd). configPath may be empty, in which case the
// file layer is skipped.
func Load(configPath string, overrides ...OptionFunc) (Options, error) {
	v := viper.New()
	v.SetEnvPrefix("NDNFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := NewDefaultOptions()
	v.SetDefault("database_path", defaults.DatabasePath)
	v.SetDefault("mount_point", defaults.MountPoint)
	v.SetDefault("global_prefix", defaults.GlobalPrefix)
	v.SetDefault("key_id", defaults.KeyID)
	v.SetDefault("segment_size", defaults.SegmentSize)
	v.SetDefault("uid", defaults.UID)
	v.SetDefault("gid", defaults.GID)
	v.SetDefault("master_key_path", defaults.MasterKeyPath)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, err
		}
	}

	var o Options
	if err := v.Unmarshal(&o); err != nil {
		return Options{}, err
	}

	for _, apply := range overrides {
		apply(&o)
	}

	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}
