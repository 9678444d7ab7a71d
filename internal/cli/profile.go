package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/growth-archive/internal/models"
)

func (c *cli) profileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the student profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			user := c.rt.Profile.Get()
			return c.emit(cmd.OutOrStdout(), user, profileTable(user))
		},
	}
	cmd.AddCommand(c.profileSetCommand())
	return cmd
}

func (c *cli) profileSetCommand() *cobra.Command {
	var name, studentID, grade, major, university, avatarURL, avatarPath string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			flags := cmd.Flags()
			var patch models.UserProfilePatch
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("student-id") {
				patch.StudentID = &studentID
			}
			if flags.Changed("grade") {
				patch.Grade = &grade
			}
			if flags.Changed("major") {
				patch.Major = &major
			}
			if flags.Changed("university") {
				patch.University = &university
			}
			if flags.Changed("avatar-url") {
				patch.Avatar = &avatarURL
			}
			if avatarPath != "" {
				dataURL, err := c.rt.AvatarImages.EncodeFile(avatarPath)
				if err != nil {
					return err
				}
				patch.Avatar = &dataURL
			}
			user, err := c.rt.Profile.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), user, profileTable(user))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "display name")
	flags.StringVar(&studentID, "student-id", "", "student number")
	flags.StringVar(&grade, "grade", "", "grade")
	flags.StringVar(&major, "major", "", "major")
	flags.StringVar(&university, "university", "", "university")
	flags.StringVar(&avatarURL, "avatar-url", "", "avatar image URL")
	flags.StringVar(&avatarPath, "avatar", "", "local avatar image to embed")
	cmd.MarkFlagsMutuallyExclusive("avatar", "avatar-url")
	return cmd
}
