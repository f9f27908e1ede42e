package filters

// DefaultNameSources returns the stock filename filters.
func DefaultNameSources() []Source {
	return []Source{
		{Name: "Backups", Active: true, Pattern: "#*# .#* ~* *~ *.{orig,bak,swp}"},
		{Name: "OS-specific metadata", Active: true, Pattern: ".DS_Store ._* .Spotlight-V100 .Trashes Thumbs.db Desktop.ini"},
		{Name: "Version Control", Active: true, Pattern: "_MTN .bzr .svn .hg .fslckout _FOSSIL_ .fos CVS _darcs .git .osc"},
		{Name: "Binaries", Active: false, Pattern: "*.{pyc,a,obj,o,so,la,lib,dll,exe}"},
		{Name: "Media", Active: false, Pattern: "*.{jpg,gif,png,bmp,wav,mp3,ogg,flac,avi,mpg,xcf,xpm}"},
	}
}

// DefaultTextSources returns the stock text filters. All are off by default.
func DefaultTextSources() []Source {
	return []Source{
		{Name: "CVS keywords", Active: false, Pattern: `\$\w+(:[^\n$]+)?\$`},
		{Name: "C++ comment", Active: false, Pattern: `//.*`},
		{Name: "C comment", Active: false, Pattern: `/\*.*?\*/`},
		{Name: "All whitespace", Active: false, Pattern: `[ \t\r\f\v]*`},
		{Name: "Leading whitespace", Active: false, Pattern: `^[ \t\r\f\v]*`},
		{Name: "Trailing whitespace", Active: false, Pattern: `[ \t\r\f\v]*$`},
		{Name: "Script comment", Active: false, Pattern: `#.*`},
	}
}
